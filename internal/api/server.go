package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/config"
)

// Serve runs handler on cfg.ListenAddress until ctx is done, then shuts
// down gracefully within cfg.ShutdownTimeout.
func Serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, log *zap.Logger) error {
	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddress, err)
	}
	return ServeListener(ctx, ln, cfg, handler, log)
}

func ServeListener(ctx context.Context, ln net.Listener, cfg config.ServerConfig, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("http server graceful shutdown failed: %w", err)
	}
	log.Info("http server stopped")
	return nil
}
