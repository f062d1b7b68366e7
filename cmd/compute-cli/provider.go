package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lagrangedao/go-compute-client/internal/provider"
	"github.com/lagrangedao/go-compute-client/util"
	"github.com/urfave/cli/v2"
)

var providerCmd = &cli.Command{
	Name:  "provider",
	Usage: "Inspect a provider",
	Subcommands: []*cli.Command{
		providerEndpoints,
		providerNonce,
	},
}

var providerEndpoints = &cli.Command{
	Name:  "endpoints",
	Usage: "List the service endpoints a provider advertises",
	Flags: []cli.Flag{
		providerFlag,
	},
	Action: func(cctx *cli.Context) error {
		ctx, cancel := util.ReqContext(cctx.Context)
		defer cancel()
		if err := loadConfig(cctx); err != nil {
			return err
		}
		uri, err := providerUri(cctx)
		if err != nil {
			return err
		}

		client := provider.NewClient()
		endpoints, err := client.GetEndpoints(ctx, uri)
		if err != nil {
			return err
		}
		serviceEndpoints := client.GetServiceEndpoints(uri, endpoints)
		sort.Slice(serviceEndpoints, func(i, j int) bool {
			return serviceEndpoints[i].ServiceName < serviceEndpoints[j].ServiceName
		})

		var data [][]string
		for _, e := range serviceEndpoints {
			data = append(data, []string{e.ServiceName, e.Method, e.UrlPath})
		}
		fmt.Printf("Provider address: %s, version: %s\n\n", endpoints.ProviderAddress, endpoints.Version)
		NewVisualTable([]string{"NAME", "METHOD", "URL"}, data).Generate()
		return nil
	},
}

var providerNonce = &cli.Command{
	Name:      "nonce",
	Usage:     "Show the last nonce the provider has seen for an address",
	ArgsUsage: "[address]",
	Flags: []cli.Flag{
		providerFlag,
		fromFlag,
	},
	Action: func(cctx *cli.Context) error {
		ctx, cancel := util.ReqContext(cctx.Context)
		defer cancel()
		if err := loadConfig(cctx); err != nil {
			return err
		}
		uri, err := providerUri(cctx)
		if err != nil {
			return err
		}

		addr := cctx.Args().First()
		if addr == "" {
			signer, closeSigner, err := signerFor(cctx)
			if err != nil {
				return err
			}
			defer closeSigner()
			if addr, err = signer.Address(ctx); err != nil {
				return err
			}
		}

		nonce, err := provider.NewClient().GetNonce(ctx, uri, addr, nil)
		if err != nil {
			return err
		}
		fmt.Println(strconv.FormatInt(nonce, 10))
		return nil
	},
}
