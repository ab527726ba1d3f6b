package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/ragchat/pkg/domain"
)

// LoggingHooks logs every lifecycle transition.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.SessionEvent) {
			logger.Info("session_start", "session_id", e.SessionID, "query_size", len(e.Query))
		},
		OnStreamEvent: func(ctx context.Context, e *domain.SessionEvent, ev domain.StreamEvent) {
			logger.Debug("stream_event", "session_id", e.SessionID, "type", ev.Type())
		},
		OnFinalize: func(ctx context.Context, e *domain.SessionEvent) {
			attrs := []any{"session_id", e.SessionID, "duration", e.Duration}
			if e.Outcome != nil {
				attrs = append(attrs, "outcome", e.Outcome.Kind)
				if e.Outcome.Detail != "" {
					attrs = append(attrs, "detail", e.Outcome.Detail)
				}
			}
			logger.Info("session_end", attrs...)
		},
	}
}

// Chain combines hooks; each callback runs in argument order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.SessionEvent) {
			for _, h := range hooks {
				if h.OnSessionStart != nil {
					h.OnSessionStart(ctx, e)
				}
			}
		},
		OnStreamEvent: func(ctx context.Context, e *domain.SessionEvent, ev domain.StreamEvent) {
			for _, h := range hooks {
				if h.OnStreamEvent != nil {
					h.OnStreamEvent(ctx, e, ev)
				}
			}
		},
		OnFinalize: func(ctx context.Context, e *domain.SessionEvent) {
			for _, h := range hooks {
				if h.OnFinalize != nil {
					h.OnFinalize(ctx, e)
				}
			}
		},
	}
}
