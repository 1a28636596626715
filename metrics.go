package spaceweather

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Client reports to.
// A nil *Metrics disables reporting.
type Metrics struct {
	Requests        *prometheus.CounterVec   // labels: endpoint, outcome={success,error}
	RequestDuration *prometheus.HistogramVec // labels: endpoint
	RecordsDecoded  *prometheus.CounterVec   // labels: endpoint
}

// NewMetrics creates client metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.Requests, m.RequestDuration, m.RecordsDecoded)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sws_client",
			Name:      "requests_total",
			Help:      "SWS API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sws_client",
			Name:      "request_duration_seconds",
			Help:      "SWS API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
		RecordsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sws_client",
			Name:      "records_decoded_total",
			Help:      "Records decoded from SWS responses by endpoint.",
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) observeRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) observeRecords(endpoint string, n int) {
	if m == nil {
		return
	}
	m.RecordsDecoded.WithLabelValues(endpoint).Add(float64(n))
}
