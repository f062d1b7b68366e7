package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/models"
)

// GetNonce returns the last nonce the provider has seen for consumerAddress.
// serviceEndpoints are the already resolved provider endpoints; when nil the
// descriptor is fetched. A missing or null nonce reads as 0.
func (c *Client) GetNonce(ctx context.Context, providerUri, consumerAddress string, serviceEndpoints []models.ServiceEndpoint) (int64, error) {
	if serviceEndpoints == nil {
		var err error
		if serviceEndpoints, err = c.FetchServiceEndpoints(ctx, providerUri); err != nil {
			return 0, err
		}
	}
	endpoint := GetEndpointURL(serviceEndpoints, constants.EndpointNonce)
	if endpoint == nil {
		return 0, fmt.Errorf("%s: %w", constants.EndpointNonce, ErrEndpointNotFound)
	}
	nonceUrl := endpoint.UrlPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nonceUrl+"?userAddress="+url.QueryEscape(consumerAddress), nil)
	if err != nil {
		return 0, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get nonce for %s: %w", consumerAddress, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("get nonce for %s: %s: %s", consumerAddress, resp.Status, string(body))
	}

	var nonceResp models.NonceResponse
	if err := json.Unmarshal(body, &nonceResp); err != nil {
		return 0, fmt.Errorf("failed to parse nonce response: %w", err)
	}
	return parseNonce(nonceResp.Nonce)
}

// parseNonce accepts integers and integral floats within the int64 range.
func parseNonce(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid nonce: %s", n)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("nonce out of range: %s", n)
	}
	return int64(f), nil
}
