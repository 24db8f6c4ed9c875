// Package metrics provides Prometheus metrics for the stemscore evaluation harness.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the evaluation run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core Business Metrics - one evaluation run end to end
	pairsEvaluated prometheus.Counter
	pairsDuplicate prometheus.Counter
	rowsWritten    prometheus.Counter
	channelScore   prometheus.Histogram
	combinedScore  prometheus.Histogram
	metricLatency  prometheus.Histogram
	signalsLoaded  prometheus.Counter

	// Business Quality Metrics
	metricErrors prometheus.Counter
	audioErrors  prometheus.Counter

	// Operational Health Metrics
	queueSize   prometheus.Gauge
	workerCount prometheus.Gauge
	pairsTotal  prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// scoreBuckets covers the [0, 1] range of perceptual quality scores.
var scoreBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0} //nolint:gochecknoglobals // fixed bucket layout

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stemscore",
		subsystem:        "evaluation",
		histogramBuckets: prometheus.DefBuckets,
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
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.pairsEvaluated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_evaluated_total",
		Help:      "Total number of song/listener pairs fully evaluated",
	})

	m.pairsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_duplicate_total",
		Help:      "Total number of duplicate song/listener pairs skipped",
	})

	m.rowsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_written_total",
		Help:      "Total number of result rows flushed to the report",
	})

	m.channelScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "channel_score",
		Help:      "Distribution of per-channel per-instrument quality scores",
		Buckets:   scoreBuckets,
	})

	m.combinedScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combined_score",
		Help:      "Distribution of combined per-pair quality scores",
		Buckets:   scoreBuckets,
	})

	m.metricLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metric_latency_milliseconds",
		Help:      "Histogram of external metric invocation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.signalsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_loaded_total",
		Help:      "Total number of audio signals loaded and validated",
	})

	m.metricErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metric_errors_total",
		Help:      "Total number of external metric failures (fatal)",
	})

	m.audioErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audio_errors_total",
		Help:      "Total number of audio load/validation failures (fatal)",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of pairs waiting in the evaluation queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of evaluation workers in the pool",
	})

	m.pairsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_total",
		Help:      "Total number of pairs enumerated for this run",
	})
}

// Global helper functions used by the rest of the codebase.

// RecordPairEvaluated increments the evaluated-pairs counter.
func RecordPairEvaluated() {
	globalManager.pairsEvaluated.Inc()
}

// RecordPairDuplicate increments the duplicate-pairs counter.
func RecordPairDuplicate() {
	globalManager.pairsDuplicate.Inc()
}

// RecordRowWritten increments the written-rows counter.
func RecordRowWritten() {
	globalManager.rowsWritten.Inc()
}

// ObserveChannelScore records one per-channel score.
func ObserveChannelScore(score float64) {
	globalManager.channelScore.Observe(score)
}

// ObserveCombinedScore records one combined per-pair score.
func ObserveCombinedScore(score float64) {
	globalManager.combinedScore.Observe(score)
}

// RecordMetricLatency records external metric invocation latency in milliseconds.
func RecordMetricLatency(latencyMs float64) {
	globalManager.metricLatency.Observe(latencyMs)
}

// RecordSignalLoaded increments the loaded-signals counter.
func RecordSignalLoaded() {
	globalManager.signalsLoaded.Inc()
}

// RecordMetricError increments the metric-failure counter.
func RecordMetricError() {
	globalManager.metricErrors.Inc()
}

// RecordAudioError increments the audio-failure counter.
func RecordAudioError() {
	globalManager.audioErrors.Inc()
}

// UpdateQueueSize updates the evaluation queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount updates the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdatePairsTotal updates the enumerated-pairs gauge.
func UpdatePairsTotal(count int) {
	globalManager.pairsTotal.Set(float64(count))
}

// GetRegistry returns the custom registry serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
