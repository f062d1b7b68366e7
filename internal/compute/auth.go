package compute

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/lagrangedao/go-compute-client/internal/provider"
)

var ErrNonceOutOfRange = errors.New("nonce out of range")

// Provider is what the compute operations need from a provider client.
// GetNonce reuses serviceEndpoints when they are given.
type Provider interface {
	FetchServiceEndpoints(ctx context.Context, providerUri string) ([]models.ServiceEndpoint, error)
	GetNonce(ctx context.Context, providerUri, consumerAddress string, serviceEndpoints []models.ServiceEndpoint) (int64, error)
	SignRequest(ctx context.Context, signer provider.Signer, message string) (string, error)
}

type Auth struct {
	Nonce           int64
	Signature       string
	ConsumerAddress string
}

// SignatureMessage is consumerAddress, then each part, then the decimal nonce,
// concatenated without separators.
func SignatureMessage(consumerAddress string, nonce int64, parts ...string) string {
	msg := consumerAddress
	for _, p := range parts {
		msg += p
	}
	return msg + strconv.FormatInt(nonce, 10)
}

// Authenticate signs a request over consumerAddress + documentId + nonce, where
// nonce is one past the provider's last seen value. serviceEndpoints are the
// endpoints already resolved for this request, nil to fetch them. Concurrent
// calls for the same address can compute the same nonce; the provider rejects
// the loser.
func Authenticate(ctx context.Context, p Provider, providerUri string, serviceEndpoints []models.ServiceEndpoint,
	signer provider.Signer, documentId string) (*Auth, error) {
	return authenticate(ctx, p, providerUri, serviceEndpoints, signer, documentId)
}

func authenticate(ctx context.Context, p Provider, providerUri string, serviceEndpoints []models.ServiceEndpoint,
	signer provider.Signer, parts ...string) (*Auth, error) {
	consumerAddress, err := signer.Address(ctx)
	if err != nil {
		return nil, fmt.Errorf("derive consumer address: %w", err)
	}

	last, err := p.GetNonce(ctx, providerUri, consumerAddress, serviceEndpoints)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}
	if last < 0 || last == math.MaxInt64 {
		return nil, fmt.Errorf("get nonce: %d: %w", last, ErrNonceOutOfRange)
	}
	nonce := last + 1

	signature, err := p.SignRequest(ctx, signer, SignatureMessage(consumerAddress, nonce, parts...))
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	return &Auth{
		Nonce:           nonce,
		Signature:       signature,
		ConsumerAddress: consumerAddress,
	}, nil
}
