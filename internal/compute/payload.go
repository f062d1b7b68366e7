package compute

import (
	"strconv"

	"github.com/lagrangedao/go-compute-client/internal/models"
)

// Payload is the compute start request body. Datasets[0] is the primary dataset.
type Payload struct {
	ConsumerAddress    string                  `json:"consumerAddress"`
	Signature          string                  `json:"signature"`
	Nonce              string                  `json:"nonce"`
	Environment        string                  `json:"environment"`
	Datasets           []models.ComputeAsset   `json:"datasets"`
	Algorithm          models.ComputeAlgorithm `json:"algorithm"`
	AdditionalDatasets *[]models.ComputeAsset  `json:"additionalDatasets,omitempty"`
	Output             *models.ComputeOutput   `json:"output,omitempty"`
}

// BuildPayload assembles the start body. A nil additionalDatasets or output
// leaves the key out entirely; a non-nil empty list is sent as [].
func BuildPayload(consumerAddress, signature string, nonce int64, environment string,
	dataset models.ComputeAsset, algorithm models.ComputeAlgorithm,
	additionalDatasets []models.ComputeAsset, output *models.ComputeOutput) *Payload {
	payload := &Payload{
		ConsumerAddress: consumerAddress,
		Signature:       signature,
		Nonce:           strconv.FormatInt(nonce, 10),
		Environment:     environment,
		Datasets:        []models.ComputeAsset{dataset},
		Algorithm:       algorithm,
	}
	if additionalDatasets != nil {
		payload.AdditionalDatasets = &additionalDatasets
	}
	if output != nil {
		payload.Output = output
	}
	return payload
}
