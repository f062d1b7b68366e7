package models

import "encoding/json"

type FileObject struct {
	Type   string `json:"type" yaml:"type"`
	Url    string `json:"url,omitempty" yaml:"url,omitempty"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	Hash   string `json:"hash,omitempty" yaml:"hash,omitempty"`
}

type ComputeAsset struct {
	FileObject   *FileObject            `json:"fileObject,omitempty" yaml:"fileObject,omitempty"`
	DocumentId   string                 `json:"documentId" yaml:"documentId"`
	ServiceId    string                 `json:"serviceId" yaml:"serviceId"`
	TransferTxId string                 `json:"transferTxId,omitempty" yaml:"transferTxId,omitempty"`
	UserData     map[string]interface{} `json:"userdata,omitempty" yaml:"userdata,omitempty"`
}

type AlgorithmContainer struct {
	Entrypoint string `json:"entrypoint" yaml:"entrypoint"`
	Image      string `json:"image" yaml:"image"`
	Tag        string `json:"tag" yaml:"tag"`
	Checksum   string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

type MetadataAlgorithm struct {
	Language  string             `json:"language,omitempty" yaml:"language,omitempty"`
	Version   string             `json:"version,omitempty" yaml:"version,omitempty"`
	RawCode   string             `json:"rawcode,omitempty" yaml:"rawcode,omitempty"`
	Container AlgorithmContainer `json:"container" yaml:"container"`
}

type ComputeAlgorithm struct {
	FileObject     *FileObject            `json:"fileObject,omitempty" yaml:"fileObject,omitempty"`
	DocumentId     string                 `json:"documentId,omitempty" yaml:"documentId,omitempty"`
	ServiceId      string                 `json:"serviceId,omitempty" yaml:"serviceId,omitempty"`
	Meta           *MetadataAlgorithm     `json:"meta,omitempty" yaml:"meta,omitempty"`
	TransferTxId   string                 `json:"transferTxId,omitempty" yaml:"transferTxId,omitempty"`
	AlgoCustomData map[string]interface{} `json:"algocustomdata,omitempty" yaml:"algocustomdata,omitempty"`
	UserData       map[string]interface{} `json:"userdata,omitempty" yaml:"userdata,omitempty"`
}

// ComputeOutput holds the job output settings; passed through to the provider as given.
type ComputeOutput struct {
	PublishAlgorithmLog bool     `json:"publishAlgorithmLog,omitempty" yaml:"publishAlgorithmLog,omitempty"`
	PublishOutput       bool     `json:"publishOutput,omitempty" yaml:"publishOutput,omitempty"`
	ProviderAddress     string   `json:"providerAddress,omitempty" yaml:"providerAddress,omitempty"`
	ProviderUri         string   `json:"providerUri,omitempty" yaml:"providerUri,omitempty"`
	MetadataUri         string   `json:"metadataUri,omitempty" yaml:"metadataUri,omitempty"`
	NodeUri             string   `json:"nodeUri,omitempty" yaml:"nodeUri,omitempty"`
	Owner               string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	SecretStoreUri      string   `json:"secretStoreUri,omitempty" yaml:"secretStoreUri,omitempty"`
	Whitelist           []string `json:"whitelist,omitempty" yaml:"whitelist,omitempty"`
}

type ComputeResult struct {
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
	Type     string `json:"type"`
	Index    int    `json:"index,omitempty"`
}

// ComputeJob is the provider's job status record.
type ComputeJob struct {
	Owner           string          `json:"owner"`
	Did             string          `json:"did,omitempty"`
	JobId           string          `json:"jobId"`
	DateCreated     string          `json:"dateCreated,omitempty"`
	DateFinished    string          `json:"dateFinished,omitempty"`
	Status          int             `json:"status,omitempty"`
	StatusText      string          `json:"statusText,omitempty"`
	Results         []ComputeResult `json:"results,omitempty"`
	InputDID        []string        `json:"inputDID,omitempty"`
	AlgoDID         string          `json:"algoDID,omitempty"`
	AgreementId     string          `json:"agreementId,omitempty"`
	ExpireTimestamp int64           `json:"expireTimestamp,omitempty"`
}

// DecodeComputeJobs accepts a single job object or an array of them.
func DecodeComputeJobs(data []byte) (jobs []ComputeJob, single bool, err error) {
	trimmed := trimLeftSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(data, &jobs); err != nil {
			return nil, false, err
		}
		return jobs, false, nil
	}
	var job ComputeJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, false, err
	}
	return []ComputeJob{job}, true, nil
}

func trimLeftSpace(data []byte) []byte {
	for len(data) > 0 {
		switch data[0] {
		case ' ', '\t', '\r', '\n':
			data = data[1:]
		default:
			return data
		}
	}
	return data
}
