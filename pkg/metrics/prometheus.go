// Package metrics provides Prometheus metrics for the NeuroPulse monitoring service.
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

// Manager manages all Prometheus metrics for the NeuroPulse service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - Sessions and predictions
	sessionsScored       prometheus.Counter
	predictionCacheHits  prometheus.Counter
	predictionCacheMiss  prometheus.Counter
	extractionFallbacks  prometheus.Counter
	highRiskMarkers      prometheus.Counter
	instantAssessments   prometheus.Counter
	bingeSessions        prometheus.Counter
	scoringLatency       prometheus.Histogram
	extractionLatency    prometheus.Histogram
	dopamineRiskObserved prometheus.Histogram

	// Monitor Metrics - Scheduler health
	monitorTickSkips         prometheus.Counter
	monitorRetries           prometheus.Counter
	monitorCleanups          prometheus.Counter
	monitorConsecutiveErrors prometheus.Gauge
	monitorIntervalSeconds   prometheus.Gauge

	// Persistence Metrics - Queue and storage performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	sessionsPersisted  prometheus.Counter
	persistErrors      prometheus.Counter
	persistLatency     prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorsByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "neuropulse",
		subsystem:        "monitor",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.sessionsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_scored_total",
		Help:      "Total number of session records scored by the predictor",
	})

	m.predictionCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_cache_hits_total",
		Help:      "Total number of predictions served from the fingerprint cache",
	})

	m.predictionCacheMiss = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_cache_misses_total",
		Help:      "Total number of predictions computed because no cache entry matched",
	})

	m.extractionFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_fallbacks_total",
		Help:      "Total number of feature extractions that fell back to safe defaults",
	})

	m.highRiskMarkers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "high_risk_markers_total",
		Help:      "Total number of zero-duration high-risk marker records emitted",
	})

	m.instantAssessments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "instant_assessments_total",
		Help:      "Total number of lightweight current-app assessments performed",
	})

	m.bingeSessions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "binge_sessions_total",
		Help:      "Total number of aggregated windows with the binge flag set",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of predictor scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.extractionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_latency_milliseconds",
		Help:      "Histogram of feature extraction latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.dopamineRiskObserved = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dopamine_risk",
		Help:      "Distribution of dopamine risk scores produced by the predictor",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	// Monitor Metrics
	m.monitorTickSkips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_skips_total",
		Help:      "Total number of scoring ticks skipped because the previous task was still running",
	})

	m.monitorRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_retries_total",
		Help:      "Total number of in-tick retry attempts after scoring failures",
	})

	m.monitorCleanups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forced_cleanups_total",
		Help:      "Total number of forced cleanup invocations under sustained errors",
	})

	m.monitorConsecutiveErrors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "consecutive_errors",
		Help:      "Current consecutive scoring error count across ticks",
	})

	m.monitorIntervalSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_interval_seconds",
		Help:      "Current adaptive full-scoring interval in seconds",
	})

	// Persistence Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_size",
		Help:      "Current number of jobs waiting in the persistence queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_capacity",
		Help:      "Configured capacity of the persistence queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_utilization",
		Help:      "Persistence queue utilization ratio (0.0 to 1.0)",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_queue_enqueue_errors_total",
		Help:      "Total number of failed persistence enqueue operations",
	})

	m.sessionsPersisted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_persisted_total",
		Help:      "Total number of session records written to storage",
	})

	m.persistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_errors_total",
		Help:      "Total number of storage write failures (logged, never fatal)",
	})

	m.persistLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_latency_milliseconds",
		Help:      "Histogram of storage write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	// Enhanced Error Metrics
	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component and error type",
	}, []string{"component", "error_type"})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// RecordSessionScored increments the scored-session counter.
func RecordSessionScored() {
	globalManager.sessionsScored.Inc()
}

// RecordPredictionCacheHit increments the prediction cache hit counter.
func RecordPredictionCacheHit() {
	globalManager.predictionCacheHits.Inc()
}

// RecordPredictionCacheMiss increments the prediction cache miss counter.
func RecordPredictionCacheMiss() {
	globalManager.predictionCacheMiss.Inc()
}

// RecordExtractionFallback increments the safe-default fallback counter.
func RecordExtractionFallback() {
	globalManager.extractionFallbacks.Inc()
}

// RecordHighRiskMarker increments the high-risk marker counter.
func RecordHighRiskMarker() {
	globalManager.highRiskMarkers.Inc()
}

// RecordInstantAssessment increments the lightweight assessment counter.
func RecordInstantAssessment() {
	globalManager.instantAssessments.Inc()
}

// RecordBingeSession increments the binge-window counter.
func RecordBingeSession() {
	globalManager.bingeSessions.Inc()
}

// RecordScoringLatency records predictor latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordExtractionLatency records extractor latency in milliseconds.
func RecordExtractionLatency(latencyMs float64) {
	globalManager.extractionLatency.Observe(latencyMs)
}

// RecordDopamineRisk records an observed dopamine risk score.
func RecordDopamineRisk(risk float64) {
	globalManager.dopamineRiskObserved.Observe(risk)
}

// RecordTickSkip increments the skipped-tick counter.
func RecordTickSkip() {
	globalManager.monitorTickSkips.Inc()
}

// RecordTickRetry increments the in-tick retry counter.
func RecordTickRetry() {
	globalManager.monitorRetries.Inc()
}

// RecordForcedCleanup increments the forced cleanup counter.
func RecordForcedCleanup() {
	globalManager.monitorCleanups.Inc()
}

// UpdateConsecutiveErrors sets the current consecutive-error gauge.
func UpdateConsecutiveErrors(count int) {
	globalManager.monitorConsecutiveErrors.Set(float64(count))
}

// UpdateScoringInterval sets the adaptive scoring interval gauge.
func UpdateScoringInterval(interval time.Duration) {
	globalManager.monitorIntervalSeconds.Set(interval.Seconds())
}

// UpdateQueueSize sets the current persistence queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the persistence queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the persistence queue utilization gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordSessionPersisted increments the persisted-session counter.
func RecordSessionPersisted() {
	globalManager.sessionsPersisted.Inc()
}

// RecordPersistError increments the storage failure counter.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// RecordPersistLatency records storage write latency in milliseconds.
func RecordPersistLatency(latencyMs float64) {
	globalManager.persistLatency.Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the component error counter.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
