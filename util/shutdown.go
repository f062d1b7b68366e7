package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/filswan/go-swan-lib/logs"
)

// RunHttp serves h on addr until ctx is done, then shuts the server down,
// waiting at most timeout for in-flight requests. A listen failure is returned
// before anything is served.
func RunHttp(ctx context.Context, h http.Handler, name string, addr string, timeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s: listen on %s: %w", name, addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 60 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	logs.GetLogger().Infof("%s listening on %s", name, ln.Addr())

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s: serve: %w", name, err)
	case <-ctx.Done():
	}

	logs.GetLogger().Warnf("Shutting down %s...", name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down %s failed: %w", name, err)
	}
	logs.GetLogger().Infof("%s shut down successfully", name)
	return nil
}
