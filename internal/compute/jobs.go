package compute

import (
	"context"
	"fmt"

	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/lagrangedao/go-compute-client/internal/provider"
)

// JobProvider adds job tracking to Provider.
type JobProvider interface {
	Provider
	ComputeStatus(ctx context.Context, providerUri, consumerAddress, jobId, documentId string) ([]byte, error)
	ComputeStop(ctx context.Context, providerUri, consumerAddress, jobId, documentId, signature string, nonce int64) ([]byte, error)
}

// Status fetches the status of the consumer's jobs, narrowed by jobId and documentId when set.
func Status(ctx context.Context, p JobProvider, providerUri, consumerAddress, jobId, documentId string) ([]models.ComputeJob, error) {
	body, err := p.ComputeStatus(ctx, providerUri, consumerAddress, jobId, documentId)
	if err != nil {
		return nil, fmt.Errorf("compute status: %w", err)
	}
	jobs, _, err := models.DecodeComputeJobs(body)
	if err != nil {
		return nil, fmt.Errorf("decode compute status response: %w", err)
	}
	return jobs, nil
}

// Stop signs and sends a stop request for jobId.
func Stop(ctx context.Context, p JobProvider, providerUri string, signer provider.Signer, jobId, documentId string) ([]models.ComputeJob, error) {
	auth, err := authenticate(ctx, p, providerUri, nil, signer, jobId, documentId)
	if err != nil {
		return nil, err
	}

	body, err := p.ComputeStop(ctx, providerUri, auth.ConsumerAddress, jobId, documentId, auth.Signature, auth.Nonce)
	if err != nil {
		return nil, fmt.Errorf("compute stop: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	jobs, _, err := models.DecodeComputeJobs(body)
	if err != nil {
		return nil, fmt.Errorf("decode compute stop response: %w", err)
	}
	return jobs, nil
}
