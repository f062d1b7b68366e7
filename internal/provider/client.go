package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrEndpointNotFound = errors.New("endpoint not advertised by provider")

// Signer is an account able to produce EIP-191 personal signatures.
type Signer interface {
	Address(ctx context.Context) (string, error)
	SignPersonal(ctx context.Context, data []byte) ([]byte, error)
}

// Client talks to a provider's HTTP service endpoints.
type Client struct {
	httpClient *http.Client
}

type Option func(*Client)

func WithHttpClient(httpClient *http.Client) Option {
	return func(obj *Client) {
		obj.httpClient = httpClient
	}
}

func NewClient(options ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) HttpClient() *http.Client {
	return c.httpClient
}

// SignRequest signs message the way providers verify it: the keccak256 hash
// of the utf8 message is personal-signed and hex encoded.
func (c *Client) SignRequest(ctx context.Context, signer Signer, message string) (string, error) {
	hash := crypto.Keccak256([]byte(message))
	sig, err := signer.SignPersonal(ctx, hash)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}
