package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lagrangedao/go-compute-client/conf"
	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/jobstore"
	"github.com/lagrangedao/go-compute-client/internal/provider"
	"github.com/lagrangedao/go-compute-client/wallet"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
)

var providerFlag = &cli.StringFlag{
	Name:  FlagProvider,
	Usage: "provider url, overrides Provider.Url of config.toml",
}

var fromFlag = &cli.StringFlag{
	Name:  FlagFrom,
	Usage: "wallet address to sign with, defaults to Wallet.Default or PRIVATE_KEY",
}

func repoPath(cctx *cli.Context) (string, error) {
	p, err := homedir.Expand(cctx.String(FlagRepo))
	if err != nil {
		return "", fmt.Errorf("expand repo path: %w", err)
	}
	return p, nil
}

// loadConfig reads config.toml from the repo; a missing file leaves the defaults in place.
func loadConfig(cctx *cli.Context) error {
	p, err := repoPath(cctx)
	if err != nil {
		return err
	}
	if err := conf.InitConfig(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			conf.SetConfig(&conf.ComputeClient{})
			return nil
		}
		return fmt.Errorf("load config file failed, error: %w", err)
	}
	return nil
}

func providerUri(cctx *cli.Context) (string, error) {
	uri := strings.TrimSpace(cctx.String(FlagProvider))
	if uri == "" {
		uri = conf.GetConfig().Provider.Url
	}
	if uri == "" {
		return "", fmt.Errorf("missing provider url, set --%s or Provider.Url in %s", FlagProvider, conf.ConfigFileName)
	}
	return uri, nil
}

// signerFor picks the signing account: --from, then Wallet.Default, then PRIVATE_KEY.
// The returned close func releases the keystore.
func signerFor(cctx *cli.Context) (provider.Signer, func(), error) {
	from := strings.TrimSpace(cctx.String(FlagFrom))
	if from == "" {
		from = conf.GetConfig().Wallet.Default
	}

	if from == "" {
		pk, ok := os.LookupEnv(constants.PrivateKeyEnv)
		if !ok {
			return nil, nil, fmt.Errorf("no signing account: set --%s, Wallet.Default or %s", FlagFrom, constants.PrivateKeyEnv)
		}
		signer, err := wallet.NewKeySigner(pk)
		if err != nil {
			return nil, nil, err
		}
		return signer, func() {}, nil
	}

	p, err := repoPath(cctx)
	if err != nil {
		return nil, nil, err
	}
	localWallet, err := wallet.SetupWallet(p)
	if err != nil {
		return nil, nil, err
	}
	signer, err := localWallet.Signer(cctx.Context, from)
	if err != nil {
		localWallet.Close()
		return nil, nil, err
	}
	return signer, func() { localWallet.Close() }, nil
}

func openJobStore(cctx *cli.Context) (*jobstore.Store, error) {
	p, err := repoPath(cctx)
	if err != nil {
		return nil, err
	}
	return jobstore.Open(filepath.Join(p, constants.JobStoreRepo))
}

func printAccount(ctx context.Context, signer provider.Signer) (string, error) {
	addr, err := signer.Address(ctx)
	if err != nil {
		return "", err
	}
	fmt.Println("Using account: " + addr)
	return addr, nil
}
