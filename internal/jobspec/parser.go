package jobspec

import (
	"fmt"
	"os"

	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/models"
	"gopkg.in/yaml.v2"
)

// JobSpec describes a compute job in a yaml file.
type JobSpec struct {
	Version            string                  `yaml:"version"`
	Provider           string                  `yaml:"provider,omitempty"`
	Environment        string                  `yaml:"environment"`
	Dataset            models.ComputeAsset     `yaml:"dataset"`
	Algorithm          models.ComputeAlgorithm `yaml:"algorithm"`
	AdditionalDatasets []models.ComputeAsset   `yaml:"additionalDatasets,omitempty"`
	Output             *models.ComputeOutput   `yaml:"output,omitempty"`
}

type Parser interface {
	Parse(yamlFile []byte) error
	GetConfig() *JobSpec
}

type ParserV1 struct {
	config JobSpec
}

func (p *ParserV1) Parse(yamlFile []byte) error {
	var spec JobSpec
	if err := yaml.Unmarshal(yamlFile, &spec); err != nil {
		return err
	}
	if spec.Dataset.DocumentId == "" {
		return fmt.Errorf("dataset.documentId is required")
	}
	if spec.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	spec.Dataset.UserData = normalizeMap(spec.Dataset.UserData)
	for i := range spec.AdditionalDatasets {
		spec.AdditionalDatasets[i].UserData = normalizeMap(spec.AdditionalDatasets[i].UserData)
	}
	spec.Algorithm.UserData = normalizeMap(spec.Algorithm.UserData)
	spec.Algorithm.AlgoCustomData = normalizeMap(spec.Algorithm.AlgoCustomData)

	p.config = spec
	return nil
}

func (p *ParserV1) GetConfig() *JobSpec {
	return &p.config
}

type Version struct {
	Version string `yaml:"version"`
}

func getYAMLFileVersion(yamlFile []byte) (string, error) {
	var version Version
	if err := yaml.Unmarshal(yamlFile, &version); err != nil {
		return "", err
	}
	return version.Version, nil
}

func HandlerYaml(yamlFilePath string) (*JobSpec, error) {
	yamlFile, err := os.ReadFile(yamlFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed unable to read file, %w", err)
	}
	return Parse(yamlFile)
}

func Parse(yamlFile []byte) (*JobSpec, error) {
	version, err := getYAMLFileVersion(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("failed unable to parse YAML file, %w", err)
	}

	var parser Parser
	switch version {
	case constants.JobSpecVersion:
		parser = &ParserV1{}
	default:
		return nil, fmt.Errorf("not support job spec version: %q", version)
	}
	if err := parser.Parse(yamlFile); err != nil {
		return nil, fmt.Errorf("failed unable to parse YAML file, %w", err)
	}
	return parser.GetConfig(), nil
}

// normalizeMap turns the map[interface{}]interface{} values yaml.v2 produces
// into map[string]interface{} so they can be json encoded.
func normalizeMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case map[string]interface{}:
		return normalizeMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	}
	return v
}
