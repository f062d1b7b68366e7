package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lagrangedao/go-compute-client/internal/compute"
	"github.com/lagrangedao/go-compute-client/internal/jobspec"
	"github.com/lagrangedao/go-compute-client/internal/jobstore"
	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/lagrangedao/go-compute-client/internal/provider"
	"github.com/lagrangedao/go-compute-client/util"
	"github.com/urfave/cli/v2"
)

var computeCmd = &cli.Command{
	Name:  "compute",
	Usage: "Manage compute jobs",
	Subcommands: []*cli.Command{
		computeStart,
		computeStatus,
		computeStop,
		computeList,
	},
}

var computeStart = &cli.Command{
	Name:      "start",
	Usage:     "Start a compute job of an algorithm over a dataset",
	ArgsUsage: "[DATA_DID ALGO_DID]",
	Flags: []cli.Flag{
		providerFlag,
		fromFlag,
		&cli.StringFlag{
			Name:  "env",
			Usage: "compute environment id, ids containing -free use the free route",
		},
		&cli.StringFlag{
			Name:  "spec",
			Usage: "read dataset, algorithm and environment from a job spec yaml file",
		},
		&cli.StringFlag{
			Name:  "dataset-service",
			Usage: "compute service id of the dataset",
		},
		&cli.StringFlag{
			Name:  "algo-service",
			Usage: "access service id of the algorithm",
		},
		&cli.StringSliceFlag{
			Name:  "additional-dataset",
			Usage: "additional dataset as DID[@SERVICE_ID], repeatable",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, cancel := util.ReqContext(cctx.Context)
		defer cancel()
		if err := loadConfig(cctx); err != nil {
			return err
		}

		spec, err := startSpec(cctx)
		if err != nil {
			return err
		}
		uri := spec.Provider
		if uri == "" || cctx.IsSet(FlagProvider) {
			if uri, err = providerUri(cctx); err != nil {
				return err
			}
		}

		signer, closeSigner, err := signerFor(cctx)
		if err != nil {
			return err
		}
		defer closeSigner()
		if _, err := printAccount(ctx, signer); err != nil {
			return err
		}

		client := provider.NewClient()
		result, err := compute.Start(ctx, client, compute.StartRequest{
			ProviderUri:        uri,
			Consumer:           signer,
			ComputeEnv:         spec.Environment,
			Dataset:            spec.Dataset,
			Algorithm:          spec.Algorithm,
			AdditionalDatasets: spec.AdditionalDatasets,
			Output:             spec.Output,
			HttpClient:         client.HttpClient(),
		})
		if err != nil {
			return err
		}

		switch result.Outcome {
		case compute.NotAttempted:
			color.Yellow("Provider %s does not expose %s, no compute job was started", uri, result.Endpoint)
			return fmt.Errorf("compute start not attempted")
		case compute.Rejected:
			color.Red("Compute start rejected by provider: %s", result.Status)
			fmt.Println(string(result.Raw))
			return fmt.Errorf("compute start rejected")
		}

		store, err := openJobStore(cctx)
		if err != nil {
			return err
		}
		defer store.Close()
		for _, job := range result.Jobs {
			if job.JobId == "" {
				continue
			}
			if err := store.Put(models.JobRecord{
				JobId:           job.JobId,
				DocumentId:      spec.Dataset.DocumentId,
				AlgorithmId:     spec.Algorithm.DocumentId,
				ConsumerAddress: result.ConsumerAddress,
				ProviderUri:     uri,
				Environment:     spec.Environment,
				CreatedAt:       time.Now().Unix(),
			}); err != nil {
				return err
			}
		}

		color.Green("Compute job started via %s (nonce %d)", result.Endpoint, result.Nonce)
		if len(result.Jobs) == 0 {
			fmt.Println(string(result.Raw))
			return nil
		}
		printJobs(result.Jobs)
		return nil
	},
}

var computeStatus = &cli.Command{
	Name:      "status",
	Usage:     "Get the status of a compute job",
	ArgsUsage: "[JOB_ID]",
	Flags: []cli.Flag{
		providerFlag,
		fromFlag,
		&cli.StringFlag{
			Name:  "document",
			Usage: "dataset DID the job runs on, read from the job history when omitted",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, cancel := util.ReqContext(cctx.Context)
		defer cancel()
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d, missing args: JOB_ID", cctx.NArg())
		}
		if err := loadConfig(cctx); err != nil {
			return err
		}

		jobId := cctx.Args().First()
		record, err := jobRecord(cctx, jobId)
		if err != nil {
			return err
		}

		signer, closeSigner, err := signerFor(cctx)
		if err != nil {
			return err
		}
		defer closeSigner()
		consumer, err := signer.Address(ctx)
		if err != nil {
			return err
		}

		jobs, err := compute.Status(ctx, provider.NewClient(), record.ProviderUri, consumer, jobId, record.DocumentId)
		if err != nil {
			return err
		}
		printJobs(jobs)
		return nil
	},
}

var computeStop = &cli.Command{
	Name:      "stop",
	Usage:     "Stop a running compute job",
	ArgsUsage: "[JOB_ID]",
	Flags: []cli.Flag{
		providerFlag,
		fromFlag,
		&cli.StringFlag{
			Name:  "document",
			Usage: "dataset DID the job runs on, read from the job history when omitted",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, cancel := util.ReqContext(cctx.Context)
		defer cancel()
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d, missing args: JOB_ID", cctx.NArg())
		}
		if err := loadConfig(cctx); err != nil {
			return err
		}

		jobId := cctx.Args().First()
		record, err := jobRecord(cctx, jobId)
		if err != nil {
			return err
		}

		signer, closeSigner, err := signerFor(cctx)
		if err != nil {
			return err
		}
		defer closeSigner()
		if _, err := printAccount(ctx, signer); err != nil {
			return err
		}

		jobs, err := compute.Stop(ctx, provider.NewClient(), record.ProviderUri, signer, jobId, record.DocumentId)
		if err != nil {
			return err
		}
		color.Green("Stop requested for job %s", jobId)
		printJobs(jobs)
		return nil
	},
}

var computeList = &cli.Command{
	Name:  "list",
	Usage: "List the compute jobs started from this repo",
	Action: func(cctx *cli.Context) error {
		store, err := openJobStore(cctx)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}

		var data [][]string
		for _, r := range records {
			data = append(data, []string{
				r.JobId,
				r.DocumentId,
				r.AlgorithmId,
				r.Environment,
				r.ConsumerAddress,
				time.Unix(r.CreatedAt, 0).Format("2006-01-02 15:04:05"),
			})
		}
		header := []string{"JOB ID", "DATASET", "ALGORITHM", "ENVIRONMENT", "CONSUMER", "CREATED"}
		NewVisualTable(header, data).Generate()
		return nil
	},
}

// startSpec builds the job from --spec or from the DATA_DID ALGO_DID arguments.
func startSpec(cctx *cli.Context) (*jobspec.JobSpec, error) {
	var spec *jobspec.JobSpec
	if path := cctx.String("spec"); path != "" {
		s, err := jobspec.HandlerYaml(path)
		if err != nil {
			return nil, err
		}
		spec = s
	} else {
		if cctx.NArg() != 2 {
			return nil, fmt.Errorf("incorrect number of arguments, got %d, missing args: DATA_DID ALGO_DID", cctx.NArg())
		}
		spec = &jobspec.JobSpec{
			Dataset: models.ComputeAsset{
				DocumentId: cctx.Args().Get(0),
				ServiceId:  cctx.String("dataset-service"),
			},
			Algorithm: models.ComputeAlgorithm{
				DocumentId: cctx.Args().Get(1),
				ServiceId:  cctx.String("algo-service"),
			},
		}
		for _, extra := range cctx.StringSlice("additional-dataset") {
			did, serviceId, _ := strings.Cut(extra, "@")
			spec.AdditionalDatasets = append(spec.AdditionalDatasets, models.ComputeAsset{
				DocumentId: did,
				ServiceId:  serviceId,
			})
		}
	}

	if cctx.IsSet("env") {
		spec.Environment = cctx.String("env")
	}
	if strings.TrimSpace(spec.Environment) == "" {
		return nil, fmt.Errorf("missing compute environment, set --env or environment in the job spec")
	}
	return spec, nil
}

// jobRecord returns the stored record of jobId with flag overrides applied.
func jobRecord(cctx *cli.Context, jobId string) (models.JobRecord, error) {
	record := models.JobRecord{JobId: jobId}

	store, err := openJobStore(cctx)
	if err != nil {
		return record, err
	}
	defer store.Close()

	stored, err := store.Get(jobId)
	if err == nil {
		record = stored
	} else if !errors.Is(err, jobstore.ErrJobNotFound) {
		return record, err
	}

	if cctx.IsSet("document") {
		record.DocumentId = cctx.String("document")
	}
	if cctx.IsSet(FlagProvider) || record.ProviderUri == "" {
		uri, err := providerUri(cctx)
		if err != nil {
			return record, err
		}
		record.ProviderUri = uri
	}
	return record, nil
}

func printJobs(jobs []models.ComputeJob) {
	var data [][]string
	for _, job := range jobs {
		data = append(data, []string{
			job.JobId,
			strconv.Itoa(job.Status),
			job.StatusText,
			job.Did,
			job.Owner,
			job.DateCreated,
		})
	}
	table := NewVisualTable([]string{"JOB ID", "STATUS", "STATUS TEXT", "DATASET", "OWNER", "CREATED"}, data)
	for i, job := range jobs {
		table.SetCellColor(i, 2, statusColor(job.Status))
	}
	fmt.Println("")
	table.Generate()
}
