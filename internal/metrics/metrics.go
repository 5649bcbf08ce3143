// Package metrics bundles Prometheus collectors for the pipeline on a
// dedicated registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the counters the pipeline and extractor report into. All
// methods are safe on a nil receiver so callers need no wiring in tests.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	RecordsDropped  *prometheus.CounterVec
	RunsTotal       *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookworm_requests_total",
			Help: "Total HTTP requests issued against the source site.",
		},
		[]string{"page"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookworm_request_duration_seconds",
			Help:    "HTTP request latency for source site requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	dropped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookworm_records_dropped_total",
			Help: "Total records discarded by the cleaner.",
		},
		[]string{"kind"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookworm_runs_total",
			Help: "Total per-author pipeline runs by outcome.",
		},
		[]string{"status"},
	)

	registry.MustRegister(requests, requestDuration, dropped, runs)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		RecordsDropped:  dropped,
		RunsTotal:       runs,
	}
}

// IncRequest increments the requests counter for a page label.
func (m *Metrics) IncRequest(page string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(page).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncDropped increments the dropped-records counter for "author" or "book".
func (m *Metrics) IncDropped(kind string) {
	if m == nil {
		return
	}
	m.RecordsDropped.WithLabelValues(kind).Inc()
}

// IncRun increments the runs counter for "success" or "fail".
func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}
