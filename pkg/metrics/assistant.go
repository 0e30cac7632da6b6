package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AssistantMetrics records generation calls per assistant surface.
type AssistantMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
	actions  *prometheus.CounterVec
}

// NewAssistantMetrics registers the assistant metrics on the provided registerer.
func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	if reg == nil {
		return &AssistantMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "barribox_assistant_duration_seconds",
		Help:    "Duration of assistant generation calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"surface"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "barribox_assistant_calls_total",
		Help: "Assistant generation calls, by surface and outcome.",
	}, []string{"surface", "outcome"})
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "barribox_assistant_actions_total",
		Help: "Dispatched assistant actions, by type.",
	}, []string{"type"})
	reg.MustRegister(duration, calls, actions)
	return &AssistantMetrics{
		duration: duration,
		calls:    calls,
		actions:  actions,
	}
}

// Observe records one generation call. outcome is "ok", "empty" or "error".
func (a *AssistantMetrics) Observe(surface, outcome string, elapsed time.Duration) {
	if a == nil || a.duration == nil {
		return
	}
	surface = normalizeLabel(surface)
	a.duration.WithLabelValues(surface).Observe(elapsed.Seconds())
	a.calls.WithLabelValues(surface, normalizeLabel(outcome)).Inc()
}

func (a *AssistantMetrics) IncAction(kind string) {
	if a == nil || a.actions == nil {
		return
	}
	a.actions.WithLabelValues(normalizeLabel(kind)).Inc()
}
