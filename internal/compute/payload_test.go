package compute

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/lagrangedao/go-compute-client/internal/provider"
	"github.com/lagrangedao/go-compute-client/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalPayload(t *testing.T, p *Payload) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestBuildPayload(t *testing.T) {
	dataset := models.ComputeAsset{DocumentId: "did:op:data", ServiceId: "svc-data"}
	algorithm := models.ComputeAlgorithm{DocumentId: "did:op:algo", ServiceId: "svc-algo"}

	t.Run("optional keys omitted", func(t *testing.T) {
		body := marshalPayload(t, BuildPayload(testConsumer, "0xsig", 12, "env", dataset, algorithm, nil, nil))
		assert.Len(t, body, 6)
		assert.NotContains(t, body, "additionalDatasets")
		assert.NotContains(t, body, "output")
		assert.JSONEq(t, `"12"`, string(body["nonce"]))
		assert.JSONEq(t, `"0xsig"`, string(body["signature"]))
		assert.JSONEq(t, `{"documentId":"did:op:algo","serviceId":"svc-algo"}`, string(body["algorithm"]))
	})

	t.Run("empty additional datasets sent", func(t *testing.T) {
		body := marshalPayload(t, BuildPayload(testConsumer, "0xsig", 1, "env", dataset, algorithm, []models.ComputeAsset{}, nil))
		assert.JSONEq(t, `[]`, string(body["additionalDatasets"]))
		assert.NotContains(t, body, "output")
	})

	t.Run("empty output sent", func(t *testing.T) {
		body := marshalPayload(t, BuildPayload(testConsumer, "0xsig", 1, "env", dataset, algorithm, nil, &models.ComputeOutput{}))
		assert.JSONEq(t, `{}`, string(body["output"]))
	})

	t.Run("primary dataset first", func(t *testing.T) {
		extra := []models.ComputeAsset{{DocumentId: "did:op:extra", ServiceId: "svc-extra"}}
		p := BuildPayload(testConsumer, "0xsig", 1, "env", dataset, algorithm, extra, nil)
		require.Len(t, p.Datasets, 1)
		assert.Equal(t, dataset, p.Datasets[0])
		require.NotNil(t, p.AdditionalDatasets)
		assert.Equal(t, extra, *p.AdditionalDatasets)
	})
}

func TestSignatureMessage(t *testing.T) {
	assert.Equal(t, "0xabcdid:op:15", SignatureMessage("0xabc", 5, "did:op:1"))
	assert.Equal(t, "0xabcjob1did:op:142", SignatureMessage("0xabc", 42, "job1", "did:op:1"))
	assert.Equal(t, "0xabc0", SignatureMessage("0xabc", 0))

	// no separator: different splits of the same characters collide
	assert.Equal(t, SignatureMessage("0xa", 1, "bc"), SignatureMessage("0xab", 1, "c"))
}

func TestSignatureChangesWithLayout(t *testing.T) {
	signer, err := wallet.NewKeySigner("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	client := provider.NewClient()
	sign := func(message string) string {
		sig, err := client.SignRequest(context.Background(), signer, message)
		require.NoError(t, err)
		return sig
	}

	canonical := sign(SignatureMessage(testConsumer, 7, "did:op:data"))
	variants := map[string]string{
		"document first":     "did:op:data" + testConsumer + "7",
		"nonce first":        "7" + testConsumer + "did:op:data",
		"colon separated":    testConsumer + ":did:op:data:7",
		"space separated":    testConsumer + " did:op:data 7",
		"trailing separator": SignatureMessage(testConsumer, 7, "did:op:data") + "\n",
	}
	for name, message := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, canonical, sign(message))
		})
	}
	assert.Equal(t, canonical, sign(testConsumer+"did:op:data7"))
}

func TestAuthenticate(t *testing.T) {
	p := &fakeProvider{nonce: 41}
	auth, err := Authenticate(context.Background(), p, "http://provider.invalid", nil, &fakeSigner{addr: testConsumer}, "did:op:data")
	require.NoError(t, err)

	assert.Equal(t, int64(42), auth.Nonce)
	assert.Equal(t, testConsumer, auth.ConsumerAddress)
	require.Len(t, p.messages, 1)
	assert.Equal(t, testConsumer+"did:op:data42", p.messages[0])
	assert.Equal(t, "sig:"+testConsumer+"did:op:data42", auth.Signature)
}

func TestAuthenticateFreshAccount(t *testing.T) {
	p := &fakeProvider{}
	auth, err := Authenticate(context.Background(), p, "http://provider.invalid", nil, &fakeSigner{addr: testConsumer}, "did:op:data")
	require.NoError(t, err)
	assert.Equal(t, int64(1), auth.Nonce)
	assert.Equal(t, testConsumer+"did:op:data1", p.messages[0])
}

func TestAuthenticateErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Authenticate(context.Background(), &fakeProvider{}, "u", nil, &fakeSigner{addrErr: boom}, "d")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "derive consumer address")

	p := &fakeProvider{nonceErr: boom}
	_, err = Authenticate(context.Background(), p, "u", nil, &fakeSigner{addr: testConsumer}, "d")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "get nonce")
	assert.Empty(t, p.messages)

	_, err = Authenticate(context.Background(), &fakeProvider{signErr: boom}, "u", nil, &fakeSigner{addr: testConsumer}, "d")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sign request")
}
