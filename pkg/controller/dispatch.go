package controller

import (
	"fmt"
	"time"

	"github.com/aretw0/ragchat/pkg/domain"
)

// User-facing texts of the controller.
const (
	ThinkingIndicator     = "_Thinking..._"
	ErrorPrefix           = "Error: "
	ConnectionLostMessage = "Connection lost: the response stream ended before an answer arrived."
	MalformedMessage      = "Error: the server sent a response this client could not read."
	TimeoutMessage        = "Timed out waiting for the assistant."
	CancelledMessage      = "Request cancelled."
	ResponseReceived      = "response received"
)

// NodeRunning is the placeholder content while node is working.
func NodeRunning(node string) string {
	return fmt.Sprintf("_%s running..._", node)
}

// NodeCompleted is the activity log line for a finished node.
func NodeCompleted(node string) string {
	return node + " completed"
}

// handleEvent is the per-event handler bound to the session's channel.
func (s *Session) handleEvent(ev domain.StreamEvent, decodeErr error) {
	c := s.controller

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return
	}
	if s.timer != nil {
		s.deadline = time.Now().Add(c.idleTimeout)
		s.timer.Reset(c.idleTimeout)
	}

	if decodeErr != nil {
		c.logger.Warn("malformed stream event", "session_id", s.id, "error", decodeErr)
		s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeMalformed, Detail: decodeErr.Error()},
			domain.NewBotText(MalformedMessage),
			domain.NewLogEntry(domain.SeverityError, decodeErr.Error()))
		return
	}

	if c.hooks.OnStreamEvent != nil {
		c.hooks.OnStreamEvent(s.ctx, s.event(), ev)
	}

	switch e := ev.(type) {
	case domain.NodeUpdate:
		if err := c.transcript.Update(s.placeholder, NodeRunning(e.Node)); err != nil {
			c.logger.Warn("placeholder update failed", "session_id", s.id, "error", err)
		}
		c.log.Add(domain.SeverityNode, NodeCompleted(e.Node))

	case domain.System:
		c.log.Add(domain.SeveritySystem, e.Text)

	case domain.FinalResult:
		s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeSuccess},
			domain.NewBotMarkup(c.render(e.Text), e.Text),
			domain.NewLogEntry(domain.SeveritySystem, ResponseReceived))

	case domain.Error:
		// Backend error text is inserted literally, never rendered as markup.
		s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeBackendError, Detail: e.Text},
			domain.NewBotText(ErrorPrefix+e.Text),
			domain.NewLogEntry(domain.SeverityError, e.Text))

	case domain.Unknown:
		c.logger.Debug("ignoring unknown stream event", "session_id", s.id, "event", e.Tag)

	default:
		c.logger.Debug("ignoring unsupported stream event", "session_id", s.id, "type", fmt.Sprintf("%T", ev))
	}
}

// handleFailure is the channel-level failure handler. After finalization it
// is a no-op: closing the channel produces exactly such a notification.
func (s *Session) handleFailure(err error) {
	c := s.controller

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		c.logger.Debug("ignoring post-terminal channel failure", "session_id", s.id, "error", err)
		return
	}

	detail := "stream closed"
	if err != nil {
		detail = err.Error()
	}
	s.finalizeLocked(domain.Outcome{Kind: domain.OutcomeConnectionLost, Detail: detail},
		domain.NewBotText(ConnectionLostMessage),
		domain.NewLogEntry(domain.SeverityError, "connection lost: "+detail))
}
