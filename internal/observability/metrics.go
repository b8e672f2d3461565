package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query consumer labels. The four consumers share one compiled predicate per
// session filter state; the label tells them apart in dashboards.
const (
	ConsumerCount  = "count"
	ConsumerPage   = "page"
	ConsumerStats  = "stats"
	ConsumerExport = "export"
)

// Metrics contains all Prometheus metrics for the annotation browser service.
// Metrics are organized by subsystem: store queries, browsing sessions, and
// exports. All counters and histograms are registered via promauto for
// automatic registration with the default Prometheus registry.
type Metrics struct {
	// QueriesTotal counts store queries, labeled by consumer.
	QueriesTotal *prometheus.CounterVec

	// QueriesFailed counts failed store queries, labeled by consumer.
	QueriesFailed *prometheus.CounterVec

	// QueryDuration observes store query duration in seconds, labeled by consumer.
	QueryDuration *prometheus.HistogramVec

	// SessionsCreated counts browsing sessions created.
	SessionsCreated prometheus.Counter

	// SessionsExpired counts browsing sessions evicted after their TTL.
	SessionsExpired prometheus.Counter

	// SessionsActive tracks the number of live browsing sessions. Each live
	// session holds one dedicated store connection.
	SessionsActive prometheus.Gauge

	// ExportsTotal counts CSV exports started.
	ExportsTotal prometheus.Counter

	// ExportsRateLimited counts export requests rejected by the rate limiter.
	ExportsRateLimited prometheus.Counter

	// ExportedRows observes the number of rows written per export.
	ExportedRows prometheus.Histogram

	// UnrecognizedLabels counts taxonomy labels the polarity resolver could
	// not map to a symbol, labeled by the normalized label.
	UnrecognizedLabels *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Store queries
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of store queries by consumer",
		}, []string{"consumer"}),
		QueriesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_failed_total",
			Help:      "Total number of failed store queries by consumer",
		}, []string{"consumer"}),
		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of store queries in seconds by consumer",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"consumer"}),

		// Sessions
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of browsing sessions created",
		}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Total number of browsing sessions evicted after their TTL",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live browsing sessions",
		}),

		// Exports
		ExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of CSV exports started",
		}),
		ExportsRateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_rate_limited_total",
			Help:      "Total number of export requests rejected by the rate limiter",
		}),
		ExportedRows: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exported_rows",
			Help:      "Number of rows written per CSV export",
			Buckets:   []float64{10, 100, 1000, 10000, 100000, 1000000, 5000000},
		}),

		// Taxonomy
		UnrecognizedLabels: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unrecognized_taxonomy_labels_total",
			Help:      "Total number of mechanism-type labels with no polarity mapping",
		}, []string{"label"}),
	}
}

// RecordQuery records a completed store query.
func (m *Metrics) RecordQuery(consumer string, durationSeconds float64) {
	m.QueriesTotal.WithLabelValues(consumer).Inc()
	m.QueryDuration.WithLabelValues(consumer).Observe(durationSeconds)
}

// RecordQueryFailed records a failed store query.
func (m *Metrics) RecordQueryFailed(consumer string) {
	m.QueriesFailed.WithLabelValues(consumer).Inc()
}

// RecordSessionCreated records a new browsing session.
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionClosed records a session closed by its owner.
func (m *Metrics) RecordSessionClosed() {
	m.SessionsActive.Dec()
}

// RecordSessionExpired records a session evicted after its TTL.
func (m *Metrics) RecordSessionExpired() {
	m.SessionsExpired.Inc()
	m.SessionsActive.Dec()
}

// RecordExport records a completed CSV export.
func (m *Metrics) RecordExport(rows int64) {
	m.ExportsTotal.Inc()
	m.ExportedRows.Observe(float64(rows))
}

// RecordExportRateLimited records an export request rejected by the limiter.
func (m *Metrics) RecordExportRateLimited() {
	m.ExportsRateLimited.Inc()
}

// RecordUnrecognizedLabel records a taxonomy label with no polarity mapping.
func (m *Metrics) RecordUnrecognizedLabel(label string) {
	m.UnrecognizedLabels.WithLabelValues(label).Inc()
}
