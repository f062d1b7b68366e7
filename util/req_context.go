package util

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ReqContext derives a context that is cancelled on SIGTERM, SIGINT or SIGHUP.
// The caller must call cancel to release the signal registration.
func ReqContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
