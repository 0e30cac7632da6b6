package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order creations and status transitions.
type OrderMetrics struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewOrderMetrics registers the order lifecycle metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "barribox_orders_created_total",
		Help: "Orders created, by origin.",
	}, []string{"kind"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "barribox_order_transitions_total",
		Help: "Accepted order status transitions, by target status.",
	}, []string{"status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "barribox_order_transitions_rejected_total",
		Help: "Rejected order status transitions, by target status.",
	}, []string{"status"})
	reg.MustRegister(created, transitions, rejected)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		rejected:    rejected,
	}
}

func (m *OrderMetrics) IncCreated(kind string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *OrderMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *OrderMetrics) IncRejected(status string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
