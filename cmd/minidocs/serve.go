package main

import (
	"context"
	"fmt"
	"time"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/config"
	"github.com/alnah/go-minidocs/internal/server"
)

// shutdownTimeout bounds the graceful shutdown of the server.
const shutdownTimeout = 10 * time.Second

// runServe starts the preview server and blocks until ctx is cancelled
// or the listener fails.
func runServe(ctx context.Context, flags *commandFlags, cfg *config.Config, opts []minidocs.Option, env *Environment) error {
	pool := minidocs.NewEditorPool(minidocs.ResolvePoolSize(cfg.Workers), opts...)
	defer func() { _ = pool.Close() }()

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowAll:       cfg.Server.AllowAll,
		RequestTimeout: 2 * cfg.TimeoutDuration(),
		Debounce:       cfg.DebounceDuration(),
	}, pool)

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", pool.Size())
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
