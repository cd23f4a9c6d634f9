// Package metrics provides Prometheus metrics for ingestion runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "logiscan"

// Error kinds recorded by RecordError.
const (
	KindFeed    = "feed"
	KindAnalyze = "analyze"
	KindStore   = "store"
)

var (
	// RunsTotal counts ingestion runs by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Total number of ingestion runs",
		},
		[]string{"status"},
	)

	// RunDuration measures ingestion run duration.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_run_duration_seconds",
			Help:      "Duration of ingestion runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	ItemsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_processed_total",
			Help:      "Feed items seen by the pipeline",
		},
	)

	ArticlesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_created_total",
			Help:      "Articles persisted after enrichment",
		},
	)

	// ErrorsTotal counts recorded pipeline errors by kind.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_errors_total",
			Help:      "Total number of pipeline errors",
		},
		[]string{"kind"},
	)

	EnrichmentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_requests_total",
			Help:      "Chat completion calls made for article analysis",
		},
		[]string{"status"},
	)
)

// RecordRun records a finished run.
func RecordRun(status string, processed, created int, seconds float64) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(seconds)
	ItemsProcessed.Add(float64(processed))
	ArticlesCreated.Add(float64(created))
}

// RecordError records one pipeline error entry.
func RecordError(kind string) {
	ErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordEnrichment records one enrichment call outcome.
func RecordEnrichment(status string) {
	EnrichmentRequests.WithLabelValues(status).Inc()
}
