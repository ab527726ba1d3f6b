// Package controller implements the streaming response controller: the state
// machine that owns one query's life cycle across a push channel and
// guarantees exactly one terminal outcome per query.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/markup"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/aretw0/ragchat/pkg/transcript"
	"github.com/google/uuid"
)

// Controller submits queries and reconciles the transcript and activity log
// with the events of the active Session. At most one Session is active.
type Controller struct {
	dialer     ports.StreamDialer
	transcript *transcript.Transcript
	log        *transcript.ActivityLog

	render       ports.MarkupRenderer
	idleTimeout  time.Duration
	maxInputSize int
	hooks        domain.LifecycleHooks
	logger       *slog.Logger

	locker   ports.DistributedLocker
	lockKey  string
	lockWait time.Duration
	lockTTL  time.Duration

	mu        sync.Mutex
	active    *Session
	reserving bool
}

// New creates a Controller writing to the given transcript and log.
func New(dialer ports.StreamDialer, tr *transcript.Transcript, log *transcript.ActivityLog, opts ...Option) *Controller {
	c := &Controller{
		dialer:       dialer,
		transcript:   tr,
		log:          log,
		render:       markup.Render,
		idleTimeout:  DefaultIdleTimeout,
		maxInputSize: DefaultMaxInputSize,
		lockKey:      "default",
		lockWait:     DefaultLockWait,
		lockTTL:      DefaultLockTTL,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transcript returns the transcript the controller writes to.
func (c *Controller) Transcript() *transcript.Transcript { return c.transcript }

// ActivityLog returns the activity log the controller writes to.
func (c *Controller) ActivityLog() *transcript.ActivityLog { return c.log }

// Active returns the session currently streaming, or nil.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Submit starts a new Session for query.
//
// A query that is empty after trimming is a no-op: Submit returns (nil, nil)
// and touches neither the transcript nor the log. A query submitted while
// another Session is active is rejected with domain.ErrSessionActive.
// Cancelling ctx cancels the Session.
func (c *Controller) Submit(ctx context.Context, query string) (*Session, error) {
	clean, err := SanitizeQuery(query, c.maxInputSize)
	if errors.Is(err, domain.ErrEmptyQuery) {
		return nil, nil
	}
	if err != nil {
		c.log.Add(domain.SeverityError, fmt.Sprintf("query rejected: %v", err))
		return nil, err
	}

	c.mu.Lock()
	if c.active != nil || c.reserving {
		c.mu.Unlock()
		c.log.Add(domain.SeveritySystem, domain.ErrSessionActive.Error())
		return nil, domain.ErrSessionActive
	}
	c.reserving = true
	c.mu.Unlock()

	var unlock ports.UnlockFunc
	if c.locker != nil {
		lockCtx, cancel := context.WithTimeout(ctx, c.lockWait)
		unlock, err = c.locker.Lock(lockCtx, c.lockKey, c.lockTTL)
		cancel()
		if err != nil {
			c.mu.Lock()
			c.reserving = false
			c.mu.Unlock()
			c.log.Add(domain.SeveritySystem, domain.ErrSessionActive.Error())
			return nil, fmt.Errorf("%w: %v", domain.ErrSessionActive, err)
		}
	}

	s := &Session{
		id:         uuid.NewString(),
		query:      clean,
		started:    time.Now(),
		controller: c,
		unlock:     unlock,
		done:       make(chan struct{}),
	}
	s.ctx, s.cancelCtx = context.WithCancel(ctx)

	// The session lock is taken before the session becomes visible through
	// Active, so Cancel cannot observe it half started.
	s.mu.Lock()
	c.mu.Lock()
	c.reserving = false
	c.active = s
	c.mu.Unlock()
	s.startLocked()
	s.mu.Unlock()

	return s, nil
}

// Cancel aborts the active Session, if any. It reports whether a Session was cancelled.
func (c *Controller) Cancel() bool {
	s := c.Active()
	if s == nil {
		return false
	}
	return s.Cancel()
}

func (c *Controller) clearActive(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == s {
		c.active = nil
	}
}
