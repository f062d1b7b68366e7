package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/filswan/go-swan-lib/logs"
	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/lagrangedao/go-compute-client/internal/provider"
)

// ErrProviderRequestFailed is returned when the start request never got a
// response. The transport error itself is only logged.
var ErrProviderRequestFailed = errors.New("HTTP request failed calling Provider")

type Outcome int

const (
	// NotAttempted means the provider does not advertise the start route; no request was sent.
	NotAttempted Outcome = iota
	// Accepted is a 2xx answer.
	Accepted
	// Rejected is a non-2xx answer.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case NotAttempted:
		return "not attempted"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

type StartRequest struct {
	ProviderUri        string
	Consumer           provider.Signer
	ComputeEnv         string
	Dataset            models.ComputeAsset
	Algorithm          models.ComputeAlgorithm
	AdditionalDatasets []models.ComputeAsset
	Output             *models.ComputeOutput

	// HttpClient sends the start request, http.DefaultClient when nil.
	HttpClient *http.Client
}

type StartResult struct {
	Outcome Outcome
	// Endpoint is the route name that was resolved, computeStart or freeCompute.
	Endpoint string
	Url      string

	// Raw is the response body exactly as received.
	Raw json.RawMessage
	// Jobs holds the decoded job(s) of an Accepted result, nil when the body
	// does not fit ComputeJob; Single reports whether the provider answered
	// with one object rather than an array.
	Jobs   []models.ComputeJob
	Single bool

	StatusCode int
	Status     string

	ConsumerAddress string
	Nonce           int64
}

// Start submits a compute job: resolve the start url, authenticate, build the
// payload, POST it and classify the answer. Authentication and transport
// failures are errors; an unresolvable route and a provider rejection are
// reported through StartResult.Outcome.
func Start(ctx context.Context, p Provider, req StartRequest) (*StartResult, error) {
	endpointName := provider.ComputeStartEndpointName(req.ComputeEnv)
	serviceEndpoints, err := p.FetchServiceEndpoints(ctx, req.ProviderUri)
	if err != nil {
		return nil, fmt.Errorf("resolve %s endpoint: %w", endpointName, err)
	}
	endpoint := provider.GetEndpointURL(serviceEndpoints, endpointName)
	if endpoint == nil {
		logs.GetLogger().Warnf("provider %s does not expose %s, compute job not started", req.ProviderUri, endpointName)
		return &StartResult{Outcome: NotAttempted, Endpoint: endpointName}, nil
	}
	startUrl := endpoint.UrlPath

	auth, err := Authenticate(ctx, p, req.ProviderUri, serviceEndpoints, req.Consumer, req.Dataset.DocumentId)
	if err != nil {
		return nil, err
	}

	payload := BuildPayload(auth.ConsumerAddress, auth.Signature, auth.Nonce, req.ComputeEnv,
		req.Dataset, req.Algorithm, req.AdditionalDatasets, req.Output)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode compute start payload: %w", err)
	}

	httpClient := req.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	result := &StartResult{
		Endpoint:        endpointName,
		Url:             startUrl,
		ConsumerAddress: auth.ConsumerAddress,
		Nonce:           auth.Nonce,
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, startUrl, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		logs.GetLogger().Errorf("Compute start failed: %v", err)
		logs.GetLogger().Errorf("Payload was: %s", string(body))
		return nil, ErrProviderRequestFailed
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logs.GetLogger().Errorf("Compute start failed reading response: %v", err)
		logs.GetLogger().Errorf("Payload was: %s", string(body))
		return nil, ErrProviderRequestFailed
	}
	result.StatusCode = resp.StatusCode
	result.Status = resp.Status
	result.Raw = respBody

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logs.GetLogger().Errorf("Compute start failed: %d %s %s", resp.StatusCode, http.StatusText(resp.StatusCode), string(respBody))
		logs.GetLogger().Errorf("Payload was: %s", string(body))
		result.Outcome = Rejected
		return result, nil
	}

	if !json.Valid(respBody) {
		logs.GetLogger().Errorf("Compute start answered %d with a non JSON body: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("compute start response from %s is not JSON", startUrl)
	}
	result.Outcome = Accepted

	// the job is running whatever shape the body has
	jobs, single, err := models.DecodeComputeJobs(respBody)
	if err != nil {
		logs.GetLogger().Warnf("Compute start accepted but the response does not decode as jobs: %v", err)
		return result, nil
	}
	result.Jobs = jobs
	result.Single = single
	return result, nil
}
