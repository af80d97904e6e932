package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics. Feature packages register
// their own counters separately.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDurationMs prometheus.Histogram
}

// New creates and registers the HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aos_http_requests_total",
			Help: "Number of HTTP requests by method and status",
		}, []string{"method", "status"}),
		RequestDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aos_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
}

// ObserveRequest records one completed request. A nil receiver disables
// recording.
func (m *Metrics) ObserveRequest(method string, status int, durationMs float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, statusClass(status)).Inc()
	m.RequestDurationMs.Observe(durationMs)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
