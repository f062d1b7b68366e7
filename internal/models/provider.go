package models

import "encoding/json"

// ProviderEndpoints is the provider's top-level descriptor.
type ProviderEndpoints struct {
	ServiceEndpoints map[string][]string `json:"serviceEndpoints"`
	ProviderAddress  string              `json:"providerAddress,omitempty"`
	Version          string              `json:"version,omitempty"`
	ChainIds         []int64             `json:"chainIds,omitempty"`
	Software         string              `json:"software,omitempty"`
}

type ServiceEndpoint struct {
	ServiceName string
	Method      string
	UrlPath     string
}

type NonceResponse struct {
	Nonce json.Number `json:"nonce"`
}

// JobRecord is a locally remembered compute job.
type JobRecord struct {
	JobId           string `json:"job_id"`
	DocumentId      string `json:"document_id"`
	AlgorithmId     string `json:"algorithm_id"`
	ConsumerAddress string `json:"consumer_address"`
	ProviderUri     string `json:"provider_uri"`
	Environment     string `json:"environment"`
	CreatedAt       int64  `json:"created_at"`
}
