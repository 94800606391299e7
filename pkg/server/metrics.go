package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's Prometheus metrics. A nil *metrics records
// nothing.
type metrics struct {
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
	messagesTotal  *prometheus.CounterVec
	dropsTotal     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "clouddrop",
			Name:      "active_sessions",
			Help:      "Number of live widget sessions",
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clouddrop",
			Name:      "sessions_total",
			Help:      "Total number of widget sessions opened",
		}),

		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clouddrop",
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction",
		}, []string{"direction"}),

		dropsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clouddrop",
			Name:      "drops_total",
			Help:      "Drop intake requests by HTTP status",
		}, []string{"code"}),
	}
}

func (m *metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	m.sessionsTotal.Inc()
}

func (m *metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *metrics) message(direction string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(direction).Inc()
}

func (m *metrics) drop(code string) {
	if m == nil {
		return
	}
	m.dropsTotal.WithLabelValues(code).Inc()
}
