// Package metrics provides Prometheus metrics for the scoutval valuation service.
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

// Manager manages all Prometheus metrics for the scoutval service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Valuation metrics
	valuationsComputed *prometheus.CounterVec
	valuationErrors    *prometheus.CounterVec
	valuationLatency   prometheus.Histogram
	absentSections     *prometheus.CounterVec

	// Weight profile metrics
	weightSaves      *prometheus.CounterVec
	weightSaveErrors *prometheus.CounterVec

	// Revaluation and ranking metrics
	revaluationsProcessed prometheus.Counter
	revaluationsDuplicate prometheus.Counter
	rankedPlayers         prometheus.Gauge

	// Operational health metrics
	queueSize   prometheus.Gauge
	workerCount prometheus.Gauge

	// Session metrics
	sessionsIssued   prometheus.Counter
	sessionsRejected *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository metrics
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue metrics
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoutval",
		subsystem:        "valuation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.valuationsComputed = auto.NewCounterVec(
		m.counterOpts("valuations_computed_total", "Total number of player valuations computed"),
		[]string{"category"},
	)
	m.valuationErrors = auto.NewCounterVec(
		m.counterOpts("valuation_errors_total", "Total number of failed valuations by error kind"),
		[]string{"kind"},
	)
	m.valuationLatency = auto.NewHistogram(
		m.histogramOpts("valuation_latency_milliseconds", "Histogram of valuation latency in milliseconds", m.histogramBuckets),
	)
	m.absentSections = auto.NewCounterVec(
		m.counterOpts("absent_sections_total", "Total number of valuation sections left absent for lack of data"),
		[]string{"section"},
	)

	m.weightSaves = auto.NewCounterVec(
		m.counterOpts("weight_saves_total", "Total number of weight profiles saved"),
		[]string{"category"},
	)
	m.weightSaveErrors = auto.NewCounterVec(
		m.counterOpts("weight_save_errors_total", "Total number of rejected or failed weight profile saves"),
		[]string{"kind"},
	)

	m.revaluationsProcessed = auto.NewCounter(
		m.counterOpts("revaluations_processed_total", "Total number of background revaluations processed"),
	)
	m.revaluationsDuplicate = auto.NewCounter(
		m.counterOpts("revaluations_duplicate_total", "Total number of duplicate revaluation jobs skipped"),
	)
	m.rankedPlayers = auto.NewGauge(
		m.gaugeOpts("ranked_players", "Number of players on the composite value leaderboard"),
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the revaluation queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Current number of revaluation workers"))

	m.sessionsIssued = auto.NewCounter(m.counterOpts("sessions_issued_total", "Total number of sessions issued"))
	m.sessionsRejected = auto.NewCounterVec(
		m.counterOpts("sessions_rejected_total", "Total number of rejected session attempts by reason"),
		[]string{"reason"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.repositoryUpdateLatency = auto.NewHistogram(
		m.histogramOpts("repository_update_latency_milliseconds", "Document store write latency in milliseconds", m.histogramBuckets),
	)
	m.repositoryQueryLatency = auto.NewHistogram(
		m.histogramOpts("repository_query_latency_milliseconds", "Document store read latency in milliseconds", m.histogramBuckets),
	)

	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of enqueue errors"))
	m.queueProcessingLatency = auto.NewHistogram(
		m.histogramOpts("queue_processing_latency_milliseconds", "Time between enqueue and processing in milliseconds", m.histogramBuckets),
	)

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of active workers"))
	m.workerMessagesPerSecond = auto.NewGauge(m.gaugeOpts("worker_messages_per_second", "Average jobs processed per second by workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets),
	)
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Enabled reports whether recording is switched on for the global manager.
func Enabled() bool {
	return globalManager.enabled
}

// RecordValuation increments the computed valuations counter for a category.
func RecordValuation(category string) {
	if !globalManager.enabled {
		return
	}
	globalManager.valuationsComputed.WithLabelValues(category).Inc()
}

// RecordValuationError increments the failed valuations counter for an error kind.
func RecordValuationError(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.valuationErrors.WithLabelValues(kind).Inc()
}

// RecordValuationLatency records valuation latency in milliseconds.
func RecordValuationLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.valuationLatency.Observe(latencyMs)
}

// RecordAbsentSection counts a valuation section that could not be computed.
func RecordAbsentSection(section string) {
	if !globalManager.enabled {
		return
	}
	globalManager.absentSections.WithLabelValues(section).Inc()
}

// RecordWeightSave counts a persisted weight profile.
func RecordWeightSave(category string) {
	if !globalManager.enabled {
		return
	}
	globalManager.weightSaves.WithLabelValues(category).Inc()
}

// RecordWeightSaveError counts a rejected or failed weight profile save.
func RecordWeightSaveError(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.weightSaveErrors.WithLabelValues(kind).Inc()
}

// RecordRevaluationProcessed increments the processed revaluations counter.
func RecordRevaluationProcessed() {
	if !globalManager.enabled {
		return
	}
	globalManager.revaluationsProcessed.Inc()
}

// RecordRevaluationDuplicate increments the duplicate revaluations counter.
func RecordRevaluationDuplicate() {
	if !globalManager.enabled {
		return
	}
	globalManager.revaluationsDuplicate.Inc()
}

// UpdateRankedPlayers sets the number of players on the leaderboard.
func UpdateRankedPlayers(count int) {
	globalManager.rankedPlayers.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordSessionIssued increments the issued sessions counter.
func RecordSessionIssued() {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsIssued.Inc()
}

// RecordSessionRejected counts a rejected session attempt.
func RecordSessionRejected(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsRejected.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryUpdateLatency records document store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records document store read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the average jobs processed per second.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if !globalManager.enabled {
		return
	}
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
