package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	backend "github.com/aretw0/ragchat/pkg/adapters/http"
	"github.com/aretw0/ragchat/pkg/adapters/memory"
)

// ShutdownTimeout is how long in-flight requests get on shutdown.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures the mock backend.
type ServeOptions struct {
	Addr string
	// Nodes are the pipeline steps the scripted agent reports. Nil means the default pipeline.
	Nodes []string
	// Delay is slept before every streamed event.
	Delay time.Duration
	// Fail, when set, makes every query end with this backend error.
	Fail   string
	Logger *slog.Logger
}

// RunServe listens on opts.Addr and serves the mock backend until ctx is done.
func RunServe(ctx context.Context, opts ServeOptions) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}
	return Serve(ctx, ln, opts)
}

// Serve serves the mock backend on ln until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	corpus := memory.NewCorpus()
	agent := &backend.ScriptedAgent{
		Nodes:  opts.Nodes,
		Delay:  opts.Delay,
		Corpus: corpus,
		Fail:   opts.Fail,
	}

	srv := &http.Server{
		Handler:           backend.NewHandler(agent, corpus, backend.WithLogger(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Mock backend listening", "address", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Mock backend stopped gracefully")
		return nil
	}
}
