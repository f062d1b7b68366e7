package main

import (
	"os"
	"strconv"
	"time"

	"github.com/filswan/go-swan-lib/logs"
	"github.com/gin-gonic/gin"
	"github.com/lagrangedao/go-compute-client/build"
	"github.com/lagrangedao/go-compute-client/conf"
	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/mockprovider"
	"github.com/lagrangedao/go-compute-client/util"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "mock-provider",
		Usage:   "A local compute provider simulator for trying out compute-cli.",
		Version: build.UserVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "repo",
				EnvVars: []string{constants.RepoEnv},
				Usage:   "compute-cli repo path, Mock.Port and Mock.Pprof are read from its config.toml",
				Value:   constants.DefaultRepoPath,
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port, overrides Mock.Port",
			},
			&cli.StringSliceFlag{
				Name:  "disable",
				Usage: "endpoint name to leave out of the descriptor, repeatable",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	repo, err := homedir.Expand(cctx.String("repo"))
	if err != nil {
		return err
	}
	port := 8030
	var options []mockprovider.Option
	if err := conf.InitConfig(repo); err == nil {
		port = conf.GetConfig().Mock.Port
		if conf.GetConfig().Mock.Pprof {
			options = append(options, mockprovider.WithPprof())
		}
	} else {
		logs.GetLogger().Warnf("no usable config in %s, using defaults: %v", repo, err)
	}
	if cctx.IsSet("port") {
		port = cctx.Int("port")
	}
	for _, name := range cctx.StringSlice("disable") {
		options = append(options, mockprovider.WithoutEndpoint(name))
	}

	gin.SetMode(gin.ReleaseMode)
	r := mockprovider.New(options...).Router()

	ctx, cancel := util.ReqContext(cctx.Context)
	defer cancel()
	return util.RunHttp(ctx, r, "mock-provider", ":"+strconv.Itoa(port), 5*time.Second)
}
