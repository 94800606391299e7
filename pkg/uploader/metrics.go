package uploader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess  = "success"
	statusError    = "error"
	statusCanceled = "canceled"
)

// Metrics holds the upload counters. A nil *Metrics records nothing.
type Metrics struct {
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	uploadBytes    prometheus.Counter
}

// NewMetrics registers the upload metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clouddrop",
			Name:      "uploads_total",
			Help:      "Total number of uploads by outcome",
		}, []string{"status"}),

		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clouddrop",
			Name:      "upload_duration_seconds",
			Help:      "Time spent posting a file to the upload endpoint",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		uploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clouddrop",
			Name:      "upload_bytes_total",
			Help:      "Total bytes of successfully uploaded files",
		}),
	}
}

func (m *Metrics) observe(status string, d time.Duration, n int64) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
	m.uploadDuration.Observe(d.Seconds())
	if n > 0 {
		m.uploadBytes.Add(float64(n))
	}
}
