// Package metrics provides Prometheus metrics for the skirmish analysis engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels used with RecordOperationLatency.
const (
	OpDetect    = "detect"
	OpSummarize = "summarize"
	OpTimeline  = "timeline"
	OpAggregate = "aggregate"
	OpRecord    = "record"
)

// Manager manages all Prometheus metrics for the analysis engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Analysis metrics
	eventsAnalyzed     prometheus.Counter
	sessionsDetected   prometheus.Counter
	noiseRuns          prometheus.Counter
	summariesBuilt     prometheus.Counter
	keyEventsFlagged   *prometheus.CounterVec
	timelineQueries    prometheus.Counter
	timelineEntries    prometheus.Counter
	aggregatesComputed prometheus.Counter
	operationLatency   *prometheus.HistogramVec

	// History metrics
	historyRecords    prometheus.Gauge
	historyPlayers    prometheus.Gauge
	historyDuplicates prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors by component and kind
	errorsByComponent *prometheus.CounterVec
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
		namespace:        "skirmish",
		subsystem:        "analysis",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.eventsAnalyzed = auto.NewCounter(m.counter("events_analyzed_total", "Total number of combat events fed to session detection"))
	m.sessionsDetected = auto.NewCounter(m.counter("sessions_detected_total", "Total number of sessions detected"))
	m.noiseRuns = auto.NewCounter(m.counter("noise_runs_total", "Total number of event runs discarded as noise"))
	m.summariesBuilt = auto.NewCounter(m.counter("summaries_built_total", "Total number of fight summaries built"))
	m.keyEventsFlagged = auto.NewCounterVec(m.counter("key_events_total", "Total number of key events flagged by reason"), []string{"reason"})
	m.timelineQueries = auto.NewCounter(m.counter("timeline_queries_total", "Total number of timeline queries"))
	m.timelineEntries = auto.NewCounter(m.counter("timeline_entries_total", "Total number of timeline entries returned"))
	m.aggregatesComputed = auto.NewCounter(m.counter("aggregates_computed_total", "Total number of player aggregates computed"))
	m.operationLatency = auto.NewHistogramVec(m.histogram("operation_latency_milliseconds", "Latency of analysis operations in milliseconds"), []string{"operation"})

	m.historyRecords = auto.NewGauge(m.gauge("history_records", "Number of per-player session records held in memory"))
	m.historyPlayers = auto.NewGauge(m.gauge("history_players", "Number of players with recorded history"))
	m.historyDuplicates = auto.NewCounter(m.counter("history_duplicates_total", "Total number of repeated session records ignored"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current number of sessions waiting for a worker"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum number of sessions the queue holds"))
	m.queueEnqueueRate = auto.NewCounter(m.counter("queue_enqueued_total", "Total number of sessions enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counter("queue_dequeued_total", "Total number of sessions dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues"))

	m.workerActiveCount = auto.NewGauge(m.gauge("workers_active", "Number of running summary workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one session in milliseconds"))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Total number of failed worker jobs"))

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_total", "Total number of errors by component and kind"), []string{"component", "kind"})
}

// Global metrics functions.

// RecordEventsAnalyzed adds n events to the analyzed counter.
func RecordEventsAnalyzed(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.eventsAnalyzed.Add(float64(n))
	}
}

// RecordSessionsDetected adds detected sessions and noise runs.
func RecordSessionsDetected(sessions, noise int) {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsDetected.Add(float64(sessions))
	globalManager.noiseRuns.Add(float64(noise))
}

// RecordSummaryBuilt increments the summaries counter.
func RecordSummaryBuilt() {
	if globalManager.enabled {
		globalManager.summariesBuilt.Inc()
	}
}

// RecordKeyEvent increments the key event counter for reason.
func RecordKeyEvent(reason string) {
	if globalManager.enabled {
		globalManager.keyEventsFlagged.WithLabelValues(reason).Inc()
	}
}

// RecordTimelineQuery records one timeline query and the entries it returned.
func RecordTimelineQuery(entries int) {
	if !globalManager.enabled {
		return
	}
	globalManager.timelineQueries.Inc()
	globalManager.timelineEntries.Add(float64(entries))
}

// RecordAggregateComputed increments the aggregates counter.
func RecordAggregateComputed() {
	if globalManager.enabled {
		globalManager.aggregatesComputed.Inc()
	}
}

// RecordOperationLatency records the latency of an analysis operation.
func RecordOperationLatency(operation string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.operationLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// UpdateHistorySize sets the history record and player gauges.
func UpdateHistorySize(records, players int) {
	if !globalManager.enabled {
		return
	}
	globalManager.historyRecords.Set(float64(records))
	globalManager.historyPlayers.Set(float64(players))
}

// RecordHistoryDuplicate increments the ignored duplicate counter.
func RecordHistoryDuplicate() {
	if globalManager.enabled {
		globalManager.historyDuplicates.Inc()
	}
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueueRate.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeueRate.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	if globalManager.enabled {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// RecordErrorByComponent records an error with component and kind labels.
func RecordErrorByComponent(component, kind string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current metrics to path in the text exposition
// format, for collection by a node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
