package conf

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const ConfigFileName = "config.toml"

var config *ComputeClient

// ComputeClient is the compute-cli config
type ComputeClient struct {
	Provider Provider
	Chain    Chain
	Wallet   Wallet
	Mock     Mock
}

type Provider struct {
	Url string
}

type Chain struct {
	Rpc  string
	Name string
}

type Wallet struct {
	Default string
}

type Mock struct {
	Port  int
	Pprof bool
}

func InitConfig(repoPath string) error {
	configFile := filepath.Join(repoPath, ConfigFileName)

	var c ComputeClient
	metaData, err := toml.DecodeFile(configFile, &c)
	if err != nil {
		return fmt.Errorf("failed load config file, path: %s, error: %w", configFile, err)
	}
	if err := requiredFieldsAreGiven(metaData); err != nil {
		return fmt.Errorf("config file %s: %w", configFile, err)
	}
	if c.Mock.Port == 0 {
		c.Mock.Port = 8030
	}
	config = &c
	return nil
}

// SetConfig replaces the loaded config, used by commands that run without a config file.
func SetConfig(c *ComputeClient) {
	config = c
}

func GetConfig() *ComputeClient {
	if config == nil {
		return &ComputeClient{}
	}
	return config
}

func requiredFieldsAreGiven(metaData toml.MetaData) error {
	requiredFields := [][]string{
		{"Provider"},
		{"Provider", "Url"},
	}

	for _, v := range requiredFields {
		if !metaData.IsDefined(v...) {
			return fmt.Errorf("required field %v not given", v)
		}
	}
	return nil
}
