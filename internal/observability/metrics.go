// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the scanner.
type Metrics struct {
	// Scan metrics
	ScansTotal    *prometheus.CounterVec // labels: mode, grade
	ScanDuration  prometheus.Histogram
	ScanFailures  prometheus.Counter
	DedupHits     prometheus.Counter
	DedupEntries  prometheus.Gauge

	// Check metrics
	CheckErrors  *prometheus.CounterVec // label: check
	CheckUnknown *prometheus.CounterVec // label: check
	CheckLatency *prometheus.HistogramVec

	// Source metrics
	BreakerOpen *prometheus.CounterVec // label: source

	// Archive metrics
	ArchiveErrors prometheus.Counter
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_riskscan"
	}

	return &Metrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Completed scans by mode and grade.",
		}, []string{"mode", "grade"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "End-to-end scan duration.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		ScanFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_failures_total",
			Help:      "Scans that failed before producing a result.",
		}),
		DedupHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_hits_total",
			Help:      "Requests answered from an in-flight or recent scan.",
		}),
		DedupEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedup_entries",
			Help:      "Live deduplication entries.",
		}),
		CheckErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_errors_total",
			Help:      "Checks that attempted and failed, by check name.",
		}, []string{"check"}),
		CheckUnknown: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_unknown_total",
			Help:      "Checks whose source had no data, by check name.",
		}, []string{"check"}),
		CheckLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_latency_seconds",
			Help:      "Per-check latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"check"}),
		BreakerOpen: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_breaker_open_total",
			Help:      "Circuit breaker open transitions by source.",
		}, []string{"source"}),
		ArchiveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_errors_total",
			Help:      "Failed scan-archive writes.",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
