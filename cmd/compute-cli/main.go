package main

import (
	"os"

	"github.com/lagrangedao/go-compute-client/build"
	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/urfave/cli/v2"
)

const (
	FlagRepo     = "repo"
	FlagProvider = "provider"
	FlagFrom     = "from"
)

func main() {
	app := &cli.App{
		Name:                 "compute-cli",
		Usage:                "A client for submitting and tracking compute jobs on a data marketplace provider.",
		EnableBashCompletion: true,
		Version:              build.UserVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagRepo,
				EnvVars: []string{constants.RepoEnv},
				Usage:   "compute-cli repo path",
				Value:   constants.DefaultRepoPath,
			},
		},
		Commands: []*cli.Command{
			computeCmd,
			providerCmd,
			walletCmd,
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
