package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/lagrangedao/go-compute-client/constants"
)

// ComputeStatus returns the raw job status body for the given filters.
// Empty jobId or documentId are left out of the query.
func (c *Client) ComputeStatus(ctx context.Context, providerUri, consumerAddress, jobId, documentId string) ([]byte, error) {
	statusUrl, ok, err := c.ResolveEndpoint(ctx, providerUri, constants.EndpointComputeStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", constants.EndpointComputeStatus, ErrEndpointNotFound)
	}

	params := url.Values{}
	params.Set("consumerAddress", consumerAddress)
	if documentId != "" {
		params.Set("documentId", documentId)
	}
	if jobId != "" {
		params.Set("jobId", jobId)
	}
	return c.doQuery(ctx, http.MethodGet, statusUrl, params)
}

// ComputeStop asks the provider to stop a job. The signature covers
// consumerAddress + jobId + documentId + nonce.
func (c *Client) ComputeStop(ctx context.Context, providerUri, consumerAddress, jobId, documentId, signature string, nonce int64) ([]byte, error) {
	stopUrl, ok, err := c.ResolveEndpoint(ctx, providerUri, constants.EndpointComputeStop)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", constants.EndpointComputeStop, ErrEndpointNotFound)
	}

	params := url.Values{}
	params.Set("documentId", documentId)
	params.Set("jobId", jobId)
	params.Set("consumerAddress", consumerAddress)
	params.Set("signature", signature)
	params.Set("nonce", fmt.Sprint(nonce))
	return c.doQuery(ctx, http.MethodPut, stopUrl, params)
}

func (c *Client) doQuery(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}
	return body, nil
}

// StatusError is a non-2xx provider answer.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded %s: %s", e.Status, string(e.Body))
}
