package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the exporter.
type Metrics struct {
	PollsTotal    *prometheus.CounterVec // labels: outcome={success,error}
	PollDuration  prometheus.Histogram
	PollerRunning prometheus.Gauge

	// Latest geomagnetic readings.
	LatestIndex *prometheus.GaugeVec // labels: index={a,k,dst}

	// Bulletins currently in force and their publication.
	ActiveBulletins    *prometheus.GaugeVec // labels: kind
	BulletinsPublished prometheus.Counter
	PublishErrors      prometheus.Counter

	BreakerOpen prometheus.Gauge
}

// NewMetrics creates and registers all exporter metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sws_exporter",
			Name:      "polls_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sws_exporter",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete poll cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sws_exporter",
			Name:      "poller_running",
			Help:      "1 when the poller is active, 0 when shut down.",
		}),
		LatestIndex: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sws_exporter",
			Name:      "latest_index",
			Help:      "Most recent geomagnetic index value by index type.",
		}, []string{"index"}),
		ActiveBulletins: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sws_exporter",
			Name:      "active_bulletins",
			Help:      "Alerts, watches, outlooks and warnings currently in force by kind.",
		}, []string{"kind"}),
		BulletinsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sws_exporter",
			Name:      "bulletins_published_total",
			Help:      "New bulletins written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sws_exporter",
			Name:      "publish_errors_total",
			Help:      "Failed bulletin publish attempts.",
		}),
		BreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sws_exporter",
			Name:      "breaker_open",
			Help:      "1 while the SWS circuit breaker is open.",
		}),
	}

	prometheus.MustRegister(
		m.PollsTotal,
		m.PollDuration,
		m.PollerRunning,
		m.LatestIndex,
		m.ActiveBulletins,
		m.BulletinsPublished,
		m.PublishErrors,
		m.BreakerOpen,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PollsTotal:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sws_exporter", Name: "polls_total"}, []string{"outcome"}),
		PollDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sws_exporter", Name: "poll_duration_seconds"}),
		PollerRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sws_exporter", Name: "poller_running"}),
		LatestIndex:        prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "sws_exporter", Name: "latest_index"}, []string{"index"}),
		ActiveBulletins:    prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "sws_exporter", Name: "active_bulletins"}, []string{"kind"}),
		BulletinsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sws_exporter", Name: "bulletins_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sws_exporter", Name: "publish_errors_total"}),
		BreakerOpen:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sws_exporter", Name: "breaker_open"}),
	}
}
