// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	QuotesProcessed    *prometheus.CounterVec
	BatchesProcessed   *prometheus.CounterVec
	QuoteFailures      *prometheus.CounterVec
	HistoryAppended    prometheus.Counter
	ChangeEventsQueued prometheus.Gauge

	// Matching metrics
	RecomputeRuns       *prometheus.CounterVec
	RecomputeLatency    prometheus.Histogram
	ActiveOpportunities prometheus.Gauge

	// Lifecycle metrics
	InventoryRecomputes prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulBatch     prometheus.Gauge
	LastSuccessfulRecompute prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "resale_price_engine"
	}

	return &Metrics{
		QuotesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "quotes_processed_total",
			Help:      "Total number of quotes processed by source and upsert outcome",
		}, []string{"source", "outcome"}),
		BatchesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "batches_processed_total",
			Help:      "Total number of quote batches processed by source",
		}, []string{"source"}),
		QuoteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "quote_failures_total",
			Help:      "Total number of rejected quotes by source and reason",
		}, []string{"source", "reason"}),
		HistoryAppended: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "history_entries_appended_total",
			Help:      "Total number of price history entries appended",
		}),
		ChangeEventsQueued: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "change_events_queued",
			Help:      "Current number of change events waiting for the matcher",
		}),

		RecomputeRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "recompute_runs_total",
			Help:      "Total number of opportunity recomputations by status",
		}, []string{"status"}),
		RecomputeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "recompute_latency_seconds",
			Help:      "Opportunity recomputation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveOpportunities: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "active_opportunities",
			Help:      "Number of opportunities written by the last recomputation",
		}),

		InventoryRecomputes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "inventory_recomputes_total",
			Help:      "Total number of inventory derived-field recomputations",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulBatch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_batch_timestamp",
			Help:      "Unix timestamp of the last successfully processed batch",
		}),
		LastSuccessfulRecompute: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_recompute_timestamp",
			Help:      "Unix timestamp of the last successful recomputation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordQuote increments the quote counter for a source and upsert outcome.
func RecordQuote(source, outcome string) {
	DefaultMetrics.QuotesProcessed.WithLabelValues(source, outcome).Inc()
}

// RecordBatch increments the batch counter for a source.
func RecordBatch(source string) {
	DefaultMetrics.BatchesProcessed.WithLabelValues(source).Inc()
}

// RecordQuoteFailure increments the rejected-quote counter.
func RecordQuoteFailure(source, reason string) {
	DefaultMetrics.QuoteFailures.WithLabelValues(source, reason).Inc()
}

// RecordHistoryAppend increments the history append counter.
func RecordHistoryAppend() {
	DefaultMetrics.HistoryAppended.Inc()
}

// UpdateQueuedEvents updates the pending change event gauge.
func UpdateQueuedEvents(n int) {
	DefaultMetrics.ChangeEventsQueued.Set(float64(n))
}

// RecordRecompute records one opportunity recomputation.
func RecordRecompute(status string, seconds float64) {
	DefaultMetrics.RecomputeRuns.WithLabelValues(status).Inc()
	DefaultMetrics.RecomputeLatency.Observe(seconds)
}

// UpdateActiveOpportunities updates the opportunity count gauge.
func UpdateActiveOpportunities(n int) {
	DefaultMetrics.ActiveOpportunities.Set(float64(n))
}

// RecordInventoryRecompute increments the lifecycle recompute counter.
func RecordInventoryRecompute() {
	DefaultMetrics.InventoryRecomputes.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
