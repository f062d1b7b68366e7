package util

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHttpStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunHttp(ctx, http.NotFoundHandler(), "test", "127.0.0.1:0", time.Second)
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunHttpListenFailure(t *testing.T) {
	err := RunHttp(context.Background(), http.NotFoundHandler(), "test", "127.0.0.1:-1", time.Second)
	assert.Error(t, err)
}
