package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/ragchat"
	"github.com/aretw0/ragchat/internal/config"
	"github.com/aretw0/ragchat/pkg/adapters/memory"
	"github.com/aretw0/ragchat/pkg/adapters/redis"
	"github.com/aretw0/ragchat/pkg/observability"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Stack is a configured client plus the resources released with it.
type Stack struct {
	Client  *ragchat.Client
	Metrics *observability.Metrics
	Logger  *slog.Logger
	Locker  ports.DistributedLocker

	closers []func() error
}

// NewStack builds the client described by cfg: lifecycle logging and
// metrics, the session lock (Redis when configured, in-process otherwise) and
// the optional metrics endpoint.
func NewStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stack, error) {
	s := &Stack{
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}

	opts := []ragchat.Option{
		ragchat.WithLogger(logger),
		ragchat.WithLegacy(cfg.Legacy),
		ragchat.WithTimeout(cfg.Timeout),
		ragchat.WithIdleTimeout(cfg.IdleTimeout),
		ragchat.WithMaxInputSize(cfg.MaxInputSize),
		ragchat.WithLifecycleHooks(observability.Chain(
			observability.LoggingHooks(logger),
			s.Metrics.Hooks(),
		)),
	}

	if cfg.RedisURL != "" {
		locker, err := redis.NewFromURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure redis lock: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = locker.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = locker.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.closers = append(s.closers, locker.Close)
		s.Locker = locker
		logger.Debug("Distributed session lock enabled")
	} else {
		s.Locker = memory.NewLocker()
	}
	opts = append(opts, ragchat.WithLocker(s.Locker))

	client, err := ragchat.New(cfg.BaseURL, opts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Client = client

	if cfg.MetricsAddr != "" {
		s.serveMetrics(cfg.MetricsAddr)
	}
	return s, nil
}

func (s *Stack) serveMetrics(addr string) {
	r := chi.NewRouter()
	r.Handle("/metrics", s.Metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		s.Logger.Info("Metrics endpoint listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("Metrics endpoint failed", "error", err)
		}
	}()
	s.closers = append(s.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// Close releases everything the stack opened, in reverse order.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
