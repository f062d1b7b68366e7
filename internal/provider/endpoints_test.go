package provider

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func newDescriptorServer(t *testing.T, serviceEndpoints map[string][]string, nonceBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"serviceEndpoints": serviceEndpoints,
			"providerAddress":  "0x00000000000000000000000000000000000000aa",
		})
	})
	mux.HandleFunc("/api/services/nonce", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userAddress") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(nonceBody))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

var allEndpoints = map[string][]string{
	constants.EndpointNonce:        {"GET", "/api/services/nonce"},
	constants.EndpointComputeStart: {"POST", "/api/services/compute"},
	constants.EndpointFreeCompute:  {"POST", "/api/services/freeCompute"},
}

func TestGetServiceEndpoints(t *testing.T) {
	server := newDescriptorServer(t, allEndpoints, `{"nonce": 1}`)
	client := NewClient()

	endpoints, err := client.GetEndpoints(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", endpoints.ProviderAddress)

	serviceEndpoints := client.GetServiceEndpoints(server.URL+"/", endpoints)
	require.Len(t, serviceEndpoints, 3)

	start := GetEndpointURL(serviceEndpoints, constants.EndpointComputeStart)
	require.NotNil(t, start)
	assert.Equal(t, "POST", start.Method)
	assert.Equal(t, server.URL+"/api/services/compute", start.UrlPath)

	assert.Nil(t, GetEndpointURL(serviceEndpoints, constants.EndpointComputeStop))
}

func TestComputeStartEndpointName(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"ocean-compute", constants.EndpointComputeStart},
		{"ocean-compute-free", constants.EndpointFreeCompute},
		{"env-free-tier", constants.EndpointFreeCompute},
		{"freecompute", constants.EndpointComputeStart},
		{"", constants.EndpointComputeStart},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStartEndpointName(tt.env))
		})
	}
}

func TestResolveComputeStartURL(t *testing.T) {
	tests := []struct {
		name      string
		endpoints map[string][]string
		env       string
		wantPath  string
		wantFound bool
	}{
		{"paid", allEndpoints, "ocean-compute", "/api/services/compute", true},
		{"free", allEndpoints, "ocean-compute-free", "/api/services/freeCompute", true},
		{"free missing, no fallback to paid", map[string][]string{
			constants.EndpointComputeStart: {"POST", "/api/services/compute"},
		}, "ocean-compute-free", "", false},
		{"paid missing, no fallback to free", map[string][]string{
			constants.EndpointFreeCompute: {"POST", "/api/services/freeCompute"},
		}, "ocean-compute", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newDescriptorServer(t, tt.endpoints, `{}`)
			got, found, err := NewClient().ResolveComputeStartURL(context.Background(), server.URL, tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, server.URL+tt.wantPath, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestResolveEndpointFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, _, err := NewClient().ResolveEndpoint(context.Background(), server.URL, constants.EndpointComputeStart)
	assert.Error(t, err)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, _, err = NewClient().ResolveEndpoint(context.Background(), closed.URL, constants.EndpointComputeStart)
	assert.Error(t, err)
}

func TestGetNonce(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      int64
		wantError bool
	}{
		{"number", `{"nonce": 41}`, 41, false},
		{"string", `{"nonce": "7"}`, 7, false},
		{"float", `{"nonce": 3.0}`, 3, false},
		{"null", `{"nonce": null}`, 0, false},
		{"missing", `{}`, 0, false},
		{"garbage", `{"nonce": "x"}`, 0, true},
		{"max int64", `{"nonce": 9223372036854775807}`, math.MaxInt64, false},
		{"above int64", `{"nonce": 9223372036854775808}`, 0, true},
		{"huge float", `{"nonce": 1e19}`, 0, true},
		{"fraction", `{"nonce": 1.5}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newDescriptorServer(t, allEndpoints, tt.body)
			got, err := NewClient().GetNonce(context.Background(), server.URL, "0x00000000000000000000000000000000000000bb", nil)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetNonceReusesEndpoints(t *testing.T) {
	var descriptorFetches int32
	server := newDescriptorServer(t, allEndpoints, `{"nonce": 4}`)
	counting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			atomic.AddInt32(&descriptorFetches, 1)
		}
		server.Config.Handler.ServeHTTP(w, r)
	}))
	defer counting.Close()

	client := NewClient()
	serviceEndpoints, err := client.FetchServiceEndpoints(context.Background(), counting.URL)
	require.NoError(t, err)

	got, err := client.GetNonce(context.Background(), counting.URL, "0x00000000000000000000000000000000000000bb", serviceEndpoints)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&descriptorFetches))
}

func TestGetNonceWithoutEndpoint(t *testing.T) {
	server := newDescriptorServer(t, map[string][]string{
		constants.EndpointComputeStart: {"POST", "/api/services/compute"},
	}, `{"nonce": 1}`)

	_, err := NewClient().GetNonce(context.Background(), server.URL, "0x00000000000000000000000000000000000000bb", nil)
	assert.ErrorIs(t, err, ErrEndpointNotFound)
}

func TestSignRequest(t *testing.T) {
	signer, err := wallet.NewKeySigner(testKey)
	require.NoError(t, err)
	addr, err := signer.Address(context.Background())
	require.NoError(t, err)

	message := addr + "did:op:1234" + "5"
	sig, err := NewClient().SignRequest(context.Background(), signer, message)
	require.NoError(t, err)

	sigBytes, err := hexutil.Decode(sig)
	require.NoError(t, err)
	require.Len(t, sigBytes, 65)
	assert.Contains(t, []byte{27, 28}, sigBytes[64])

	ok, err := wallet.Verify(addr, sigBytes, crypto.Keccak256([]byte(message)))
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := NewClient().SignRequest(context.Background(), signer, addr+"did:op:1234"+"6")
	require.NoError(t, err)
	assert.NotEqual(t, sig, other)
}
