package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/models"
)

// GetEndpoints fetches the provider's top-level endpoint descriptor.
func (c *Client) GetEndpoints(ctx context.Context, providerUri string) (*models.ProviderEndpoints, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, providerUri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch provider endpoints from %s: %w", providerUri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch provider endpoints from %s: %s: %s", providerUri, resp.Status, string(body))
	}

	var endpoints models.ProviderEndpoints
	if err := json.Unmarshal(body, &endpoints); err != nil {
		return nil, fmt.Errorf("failed to parse provider endpoints: %w", err)
	}
	return &endpoints, nil
}

// GetServiceEndpoints expands the descriptor into absolute service urls.
func (c *Client) GetServiceEndpoints(providerUri string, endpoints *models.ProviderEndpoints) []models.ServiceEndpoint {
	if endpoints == nil {
		return nil
	}
	base := strings.TrimRight(providerUri, "/")

	serviceEndpoints := make([]models.ServiceEndpoint, 0, len(endpoints.ServiceEndpoints))
	for name, route := range endpoints.ServiceEndpoints {
		if len(route) < 2 {
			continue
		}
		serviceEndpoints = append(serviceEndpoints, models.ServiceEndpoint{
			ServiceName: name,
			Method:      route[0],
			UrlPath:     base + route[1],
		})
	}
	return serviceEndpoints
}

// GetEndpointURL returns the named service endpoint, or nil when the provider does not expose it.
func GetEndpointURL(serviceEndpoints []models.ServiceEndpoint, serviceName string) *models.ServiceEndpoint {
	for i := range serviceEndpoints {
		if serviceEndpoints[i].ServiceName == serviceName {
			return &serviceEndpoints[i]
		}
	}
	return nil
}

// FetchServiceEndpoints fetches the provider descriptor and expands it.
func (c *Client) FetchServiceEndpoints(ctx context.Context, providerUri string) ([]models.ServiceEndpoint, error) {
	endpoints, err := c.GetEndpoints(ctx, providerUri)
	if err != nil {
		return nil, err
	}
	return c.GetServiceEndpoints(providerUri, endpoints), nil
}

// ResolveEndpoint fetches the provider endpoints and looks up name.
// The bool is false when the provider does not advertise it.
func (c *Client) ResolveEndpoint(ctx context.Context, providerUri, name string) (string, bool, error) {
	serviceEndpoints, err := c.FetchServiceEndpoints(ctx, providerUri)
	if err != nil {
		return "", false, err
	}
	endpoint := GetEndpointURL(serviceEndpoints, name)
	if endpoint == nil {
		return "", false, nil
	}
	return endpoint.UrlPath, true, nil
}

// ComputeStartEndpointName picks the start route from the environment id alone.
func ComputeStartEndpointName(computeEnv string) string {
	if strings.Contains(computeEnv, constants.FreeEnvironmentMarker) {
		return constants.EndpointFreeCompute
	}
	return constants.EndpointComputeStart
}

// ResolveComputeStartURL resolves the free or paid start url for computeEnv.
// There is no fallback between the two routes.
func (c *Client) ResolveComputeStartURL(ctx context.Context, providerUri, computeEnv string) (string, bool, error) {
	return c.ResolveEndpoint(ctx, providerUri, ComputeStartEndpointName(computeEnv))
}
