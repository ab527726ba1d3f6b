package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsHooks(t *testing.T) {
	m := observability.NewMetrics()
	h := m.Hooks()
	ctx := context.Background()
	ev := &domain.SessionEvent{SessionID: "s1", Query: "q"}

	h.OnSessionStart(ctx, ev)
	h.OnStreamEvent(ctx, ev, domain.System{Text: "starting"})
	h.OnStreamEvent(ctx, ev, domain.NodeUpdate{Node: "retriever"})
	h.OnStreamEvent(ctx, ev, domain.Unknown{Tag: "token"})
	h.OnStreamEvent(ctx, ev, domain.Unknown{Tag: "heartbeat"})

	ev.Duration = 1500 * time.Millisecond
	ev.Outcome = &domain.Outcome{Kind: domain.OutcomeSuccess}
	h.OnFinalize(ctx, ev)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("system")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("node_update")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "ragchat_sessions_started_total 1")
}

func TestChainAndLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var order []string
	first := domain.LifecycleHooks{
		OnFinalize: func(ctx context.Context, e *domain.SessionEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnFinalize: func(ctx context.Context, e *domain.SessionEvent) { order = append(order, "second") },
	}

	h := observability.Chain(first, observability.LoggingHooks(logger), second)
	ev := &domain.SessionEvent{SessionID: "s1"}
	h.OnSessionStart(context.Background(), ev)
	h.OnStreamEvent(context.Background(), ev, domain.System{Text: "x"})

	ev.Outcome = &domain.Outcome{Kind: domain.OutcomeTimeout, Detail: "2m0s"}
	h.OnFinalize(context.Background(), ev)

	assert.Equal(t, []string{"first", "second"}, order)
	out := buf.String()
	assert.Contains(t, out, "session_start")
	assert.Contains(t, out, "stream_event")
	assert.Contains(t, out, "outcome=timeout")
	assert.Contains(t, out, "detail=2m0s")
}
