package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// avalanche intelligence pipeline.
type Metrics struct {
	// Warning ingestion metrics.
	WarningFetches *prometheus.CounterVec // labels: outcome={success,error}
	ActiveWarnings prometheus.Gauge
	WarningCache   *prometheus.CounterVec // labels: result={hit,miss,stale}

	// Forecast store metrics.
	StoreReadDuration prometheus.Histogram
	StoreReadErrors   prometheus.Counter
	RecordsSkipped    prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.WarningFetches,
		m.ActiveWarnings,
		m.WarningCache,
		m.StoreReadDuration,
		m.StoreReadErrors,
		m.RecordsSkipped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		WarningFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backcountry_crews",
			Name:      "warning_fetches_total",
			Help:      "Upstream warning fetch cycles by outcome.",
		}, []string{"outcome"}),
		ActiveWarnings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "backcountry_crews",
			Name:      "active_warnings",
			Help:      "Deduplicated warnings in the most recent successful cycle.",
		}),
		WarningCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backcountry_crews",
			Name:      "warning_cache_total",
			Help:      "Warning cache lookups by result.",
		}, []string{"result"}),
		StoreReadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "backcountry_crews",
			Name:      "store_read_duration_seconds",
			Help:      "Duration of forecast store reads.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		StoreReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "backcountry_crews",
			Name:      "store_read_errors_total",
			Help:      "Forecast store reads that failed or timed out.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "backcountry_crews",
			Name:      "records_skipped_total",
			Help:      "Persisted records rejected for missing identity fields.",
		}),
	}
}
