package controller

import (
	"log/slog"
	"time"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
)

const (
	// DefaultIdleTimeout bounds the silence between two stream events.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultLockTTL is the lifetime of the distributed single-query lock.
	DefaultLockTTL = 10 * time.Minute

	// DefaultLockWait is how long Submit waits for the distributed lock.
	DefaultLockWait = 300 * time.Millisecond
)

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithRenderer configures the safe markup renderer applied to final answers.
func WithRenderer(render ports.MarkupRenderer) Option {
	return func(c *Controller) {
		c.render = render
	}
}

// WithIdleTimeout sets the maximum silence between events before a session
// is finalized as timed out. Zero disables the timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.idleTimeout = d
	}
}

// WithMaxInputSize overrides the query size limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxInputSize = n
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithLocker guards submissions with a distributed lock on key, so that
// several processes sharing a backend never stream at the same time.
func WithLocker(locker ports.DistributedLocker, key string) Option {
	return func(c *Controller) {
		c.locker = locker
		c.lockKey = key
	}
}

// WithLockTiming tunes how long Submit waits for the lock and how long the lock lives.
func WithLockTiming(wait, ttl time.Duration) Option {
	return func(c *Controller) {
		if wait > 0 {
			c.lockWait = wait
		}
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}
