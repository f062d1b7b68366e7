package util

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReqContextCancel(t *testing.T) {
	ctx, cancel := ReqContext(context.Background())
	require.NoError(t, ctx.Err())

	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestReqContextParent(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := ReqContext(parent)
	defer cancel()

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with its parent")
	}

	ctx, cancel = ReqContext(nil)
	defer cancel()
	assert.NoError(t, ctx.Err())
}

func TestReqContextSignal(t *testing.T) {
	ctx, cancel := ReqContext(context.Background())
	defer cancel()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled on SIGHUP")
	}
}
