package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records session activity.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted prometheus.Counter
	Outcomes        *prometheus.CounterVec
	Events          *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ragchat_sessions_started_total",
			Help: "Total number of queries submitted to the agent",
		}),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragchat_session_outcomes_total",
				Help: "Terminal outcomes by kind",
			},
			[]string{"outcome"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragchat_stream_events_total",
				Help: "Stream events received by type",
			},
			[]string{"type"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ragchat_session_duration_seconds",
				Help:    "Time from submission to terminal outcome",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.SessionsStarted, m.Outcomes, m.Events, m.Duration)
	return m
}

// Registry exposes the registry, e.g. for tests or an external exporter.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.SessionEvent) {
			m.SessionsStarted.Inc()
		},
		OnStreamEvent: func(ctx context.Context, e *domain.SessionEvent, ev domain.StreamEvent) {
			m.Events.WithLabelValues(eventLabel(ev)).Inc()
		},
		OnFinalize: func(ctx context.Context, e *domain.SessionEvent) {
			if e.Outcome == nil {
				return
			}
			kind := string(e.Outcome.Kind)
			m.Outcomes.WithLabelValues(kind).Inc()
			m.Duration.WithLabelValues(kind).Observe(e.Duration.Seconds())
		},
	}
}

// eventLabel keeps label cardinality bounded: unknown tags share one label.
func eventLabel(ev domain.StreamEvent) string {
	if _, ok := ev.(domain.Unknown); ok {
		return "unknown"
	}
	return string(ev.Type())
}
