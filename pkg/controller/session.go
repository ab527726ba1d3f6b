package controller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/aretw0/ragchat/pkg/transcript"
)

// Session is one open streaming exchange for one query.
// It owns the channel handle and the placeholder transcript entry.
type Session struct {
	id         string
	query      string
	started    time.Time
	controller *Controller

	ctx       context.Context
	cancelCtx context.CancelFunc
	cancelled atomic.Bool
	unlock    ports.UnlockFunc

	mu          sync.Mutex
	channel     ports.Channel
	placeholder transcript.Handle
	timer       *time.Timer
	deadline    time.Time
	finalized   bool
	outcome     domain.Outcome
	result      domain.Message
	done        chan struct{}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Query returns the sanitized query the session was opened for.
func (s *Session) Query() string { return s.query }

// Started returns when the session was created.
func (s *Session) Started() time.Time { return s.started }

// Done is closed once the session reaches its terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Finalized reports whether a terminal outcome has been processed.
func (s *Session) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// Outcome returns the terminal outcome. ok is false until the session is finalized.
func (s *Session) Outcome() (outcome domain.Outcome, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.finalized
}

// Result returns the terminal bot message. ok is false until the session is finalized.
func (s *Session) Result() (msg domain.Message, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.finalized
}

// Wait blocks until the session is finalized or ctx is done.
func (s *Session) Wait(ctx context.Context) (domain.Outcome, error) {
	select {
	case <-s.done:
		out, _ := s.Outcome()
		return out, nil
	case <-ctx.Done():
		return domain.Outcome{}, ctx.Err()
	}
}

// Cancel closes the channel and finalizes the session without waiting for the
// backend. It reports whether this call finalized the session.
func (s *Session) Cancel() bool {
	s.cancelled.Store(true)
	s.cancelCtx()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return false
	}
	s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeCancelled},
		domain.NewBotText(CancelledMessage),
		domain.NewLogEntry(domain.SeveritySystem, "cancelled by user"))
	return true
}

// startLocked performs the ordered side effects of a submission. The caller
// holds s.mu while the channel opens, so handlers registered by Open cannot
// run before the channel handle and placeholder are in place.
func (s *Session) startLocked() {
	c := s.controller

	c.transcript.Append(domain.NewUserMessage(s.query))
	s.placeholder = c.transcript.AppendPlaceholder(ThinkingIndicator)

	c.logger.Debug("session started", "session_id", s.id, "query_size", len(s.query))
	if c.hooks.OnSessionStart != nil {
		c.hooks.OnSessionStart(s.ctx, s.event())
	}

	ch, err := c.dialer.Open(s.ctx, s.query, ports.StreamHandlers{
		OnEvent:   s.handleEvent,
		OnFailure: s.handleFailure,
	})
	if err != nil {
		if s.cancelled.Load() || s.ctx.Err() != nil {
			s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeCancelled},
				domain.NewBotText(CancelledMessage),
				domain.NewLogEntry(domain.SeveritySystem, "cancelled by user"))
			return
		}
		c.logger.Warn("failed to open stream", "session_id", s.id, "error", err)
		s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeConnectionLost, Detail: err.Error()},
			domain.NewBotText(ConnectionLostMessage),
			domain.NewLogEntry(domain.SeverityError, fmt.Sprintf("connection lost: %v", err)))
		return
	}
	s.channel = ch

	if c.idleTimeout > 0 {
		s.deadline = time.Now().Add(c.idleTimeout)
		s.timer = time.AfterFunc(c.idleTimeout, s.handleTimeout)
	}

	go s.watchContext()
}

// watchContext turns cancellation of the submitting context into Cancel.
func (s *Session) watchContext() {
	select {
	case <-s.ctx.Done():
		s.Cancel()
	case <-s.done:
	}
}

func (s *Session) handleTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return
	}
	// An event handled while this callback waited for the lock moved the deadline.
	if remaining := time.Until(s.deadline); remaining > 0 {
		s.timer.Reset(remaining)
		return
	}
	timeout := s.controller.idleTimeout
	s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeTimeout, Detail: timeout.String()},
		domain.NewBotText(TimeoutMessage),
		domain.NewLogEntry(domain.SeverityError, fmt.Sprintf("timeout: no events for %s", timeout)))
}

// finalizeLocked performs the single terminal transition. The placeholder is
// removed before the terminal message is appended. Callers hold s.mu.
func (s *Session) finalizeLocked(outcome domain.Outcome, msg domain.Message, entry domain.LogEntry) {
	c := s.controller

	s.finalized = true
	s.outcome = outcome
	s.result = msg
	if s.timer != nil {
		s.timer.Stop()
	}

	if err := c.transcript.Remove(s.placeholder); err != nil {
		c.logger.Warn("placeholder already gone", "session_id", s.id, "error", err)
	}
	c.transcript.Append(msg)
	c.log.Append(entry)

	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			c.logger.Debug("channel close failed", "session_id", s.id, "error", err)
		}
	}
	s.cancelCtx()

	if s.unlock != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.unlock(ctx); err != nil {
			c.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"session_id", s.id,
				"error", err,
			)
		}
		cancel()
	}

	c.clearActive(s)

	c.logger.Debug("session finalized", "session_id", s.id, "outcome", outcome.Kind)
	if c.hooks.OnFinalize != nil {
		ev := s.event()
		ev.Duration = time.Since(s.started)
		ev.Outcome = &outcome
		c.hooks.OnFinalize(s.ctx, ev)
	}

	close(s.done)
}

func (s *Session) event() *domain.SessionEvent {
	return &domain.SessionEvent{
		SessionID: s.id,
		Query:     s.query,
		Timestamp: time.Now(),
	}
}
