// Package metrics provides Prometheus metrics for the rating engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns all Prometheus metrics for the rating service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Replay metrics.
	matchesRated        prometheus.Counter
	matchesSkipped      *prometheus.CounterVec
	convergenceWarnings prometheus.Counter
	replayDuration      prometheus.Histogram
	playersTracked      prometheus.Gauge
	historyRows         prometheus.Gauge

	// Ingest metrics.
	ingestFiles      prometheus.Counter
	ingestRows       prometheus.Counter
	ingestMalformed  *prometheus.CounterVec
	ingestDuplicates prometheus.Counter
	ingestWorkers    prometheus.Gauge

	// Leaderboard metrics.
	leaderboardRebuilds        prometheus.Counter
	leaderboardRebuildDuration prometheus.Histogram
	leaderboardSize            prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rallyrank",
		subsystem:        "ratings",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesRated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_rated_total",
		Help:      "Total number of matches applied to the rating state",
	})

	m.matchesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_skipped_total",
		Help:      "Total number of matches excluded from the rating pass, by reason",
	}, []string{"reason"})

	m.convergenceWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "convergence_warnings_total",
		Help:      "Total number of volatility solves that hit the iteration bound",
	})

	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_duration_milliseconds",
		Help:      "Histogram of full-history replay durations in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.playersTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_tracked",
		Help:      "Number of players with live rating state",
	})

	m.historyRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_rows",
		Help:      "Number of rows in the current ratings-history table",
	})

	m.ingestFiles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "files_total",
		Help:      "Total number of source files decoded",
	})

	m.ingestRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "Total number of source rows decoded",
	})

	m.ingestMalformed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "malformed_rows_total",
		Help:      "Total number of source rows dropped as malformed, by field",
	}, []string{"field"})

	m.ingestDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "duplicate_rows_total",
		Help:      "Total number of rows dropped because their document code was already seen",
	})

	m.ingestWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "workers",
		Help:      "Number of concurrent file decode workers",
	})

	m.leaderboardRebuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "rebuilds_total",
		Help:      "Total number of leaderboard rebuilds from summary tables",
	})

	m.leaderboardRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "rebuild_duration_milliseconds",
		Help:      "Histogram of leaderboard rebuild durations in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "size",
		Help:      "Number of players on the current leaderboard",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "Histogram of HTTP request durations in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Replay metrics functions.

// RecordMatchRated increments the rated-match counter.
func RecordMatchRated() {
	globalManager.matchesRated.Inc()
}

// RecordMatchSkipped increments the skipped-match counter for a reason.
func RecordMatchSkipped(reason string) {
	globalManager.matchesSkipped.WithLabelValues(reason).Inc()
}

// RecordConvergenceWarning increments the convergence warning counter.
func RecordConvergenceWarning() {
	globalManager.convergenceWarnings.Inc()
}

// RecordReplayDuration records how long a full replay took.
func RecordReplayDuration(latencyMs float64) {
	globalManager.replayDuration.Observe(latencyMs)
}

// UpdatePlayersTracked sets the number of players with live state.
func UpdatePlayersTracked(count int) {
	globalManager.playersTracked.Set(float64(count))
}

// UpdateHistoryRows sets the size of the current history table.
func UpdateHistoryRows(count int) {
	globalManager.historyRows.Set(float64(count))
}

// Ingest metrics functions.

// RecordIngestFile increments the decoded-file counter.
func RecordIngestFile() {
	globalManager.ingestFiles.Inc()
}

// RecordIngestRows adds to the decoded-row counter.
func RecordIngestRows(n int) {
	globalManager.ingestRows.Add(float64(n))
}

// RecordMalformedRow increments the malformed-row counter for a field.
func RecordMalformedRow(field string) {
	globalManager.ingestMalformed.WithLabelValues(field).Inc()
}

// RecordDuplicateMatch increments the duplicate-row counter.
func RecordDuplicateMatch() {
	globalManager.ingestDuplicates.Inc()
}

// UpdateIngestWorkers sets the decode worker count.
func UpdateIngestWorkers(count int) {
	globalManager.ingestWorkers.Set(float64(count))
}

// Leaderboard metrics functions.

// RecordLeaderboardRebuild increments the rebuild counter.
func RecordLeaderboardRebuild() {
	globalManager.leaderboardRebuilds.Inc()
}

// RecordLeaderboardRebuildDuration records a rebuild duration.
func RecordLeaderboardRebuildDuration(latencyMs float64) {
	globalManager.leaderboardRebuildDuration.Observe(latencyMs)
}

// UpdateLeaderboardSize sets the leaderboard player count.
func UpdateLeaderboardSize(count int) {
	globalManager.leaderboardSize.Set(float64(count))
}

// HTTP metrics functions.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records a request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, latencyMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
