// Package metrics provides Prometheus metrics for the recommender service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the recommender.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ranking pipeline metrics
	rankingRequests  prometheus.Counter
	rankingLatency   prometheus.Histogram
	candidatesScored prometheus.Counter
	emptyRankings    prometheus.Counter
	modelFallbacks   *prometheus.CounterVec
	exploreSwaps     prometheus.Counter

	// Exploration and fairness metrics
	impressionsTracked prometheus.Gauge
	banditUpdates      prometheus.Counter
	banditArms         prometheus.Gauge
	feedbackByAction   *prometheus.CounterVec

	// Feedback queue and worker metrics
	feedbackQueueSize     prometheus.Gauge
	feedbackQueueCapacity prometheus.Gauge
	feedbackEnqueueErrors prometheus.Counter
	workerErrors          prometheus.Counter

	// Loaded-state metrics
	graphNodes       prometheus.Gauge
	graphEdges       prometheus.Gauge
	embeddingVectors *prometheus.GaugeVec

	// HTTP metrics
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
		namespace:        "teamforge",
		subsystem:        "recommender",
		histogramBuckets: prometheus.DefBuckets,
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

	m.rankingRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_requests_total",
		Help:      "Total number of ranking requests served",
	})

	m.rankingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_latency_milliseconds",
		Help:      "Histogram of end-to-end ranking latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.candidatesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_scored_total",
		Help:      "Total number of candidates scored across all requests",
	})

	m.emptyRankings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "empty_rankings_total",
		Help:      "Ranking calls that produced no candidates (unknown team or empty pool)",
	})

	m.modelFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_fallbacks_total",
		Help:      "Artifact-missing fallbacks to the deterministic neutral value",
	}, []string{"artifact"})

	m.exploreSwaps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "explore_swaps_total",
		Help:      "Epsilon-greedy head-of-list perturbations applied",
	})

	m.impressionsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "impressions_tracked",
		Help:      "Users with at least one recorded impression this process lifetime",
	})

	m.banditUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bandit_updates_total",
		Help:      "Total bandit arm updates applied",
	})

	m.banditArms = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bandit_arms",
		Help:      "Number of bandit arms currently tracked",
	})

	m.feedbackByAction = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_total",
		Help:      "Feedback events received, by action",
	}, []string{"action"})

	m.feedbackQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_queue_size",
		Help:      "Current size of the feedback queue",
	})

	m.feedbackQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_queue_capacity",
		Help:      "Configured capacity of the feedback queue",
	})

	m.feedbackEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_enqueue_errors_total",
		Help:      "Feedback events rejected by the queue (backpressure or closed)",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Feedback worker processing errors",
	})

	m.graphNodes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_nodes",
		Help:      "Users in the relationship graph",
	})

	m.graphEdges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_edges",
		Help:      "Connected user pairs in the relationship graph",
	})

	m.embeddingVectors = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_vectors",
		Help:      "Vectors loaded per embedding repository",
	}, []string{"repository"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration by endpoint, method, and status",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Package-level helpers delegating to the global manager.

// RecordRankingRequest increments the ranking request counter.
func RecordRankingRequest() {
	globalManager.rankingRequests.Inc()
}

// ObserveRankingLatency records one ranking call's latency.
func ObserveRankingLatency(latencyMs float64) {
	globalManager.rankingLatency.Observe(latencyMs)
}

// AddCandidatesScored adds the batch size of a ranking call.
func AddCandidatesScored(n int) {
	globalManager.candidatesScored.Add(float64(n))
}

// RecordEmptyRanking increments the empty-result counter.
func RecordEmptyRanking() {
	globalManager.emptyRankings.Inc()
}

// RecordModelFallback notes a missing-artifact fallback for one artifact.
func RecordModelFallback(artifact string) {
	globalManager.modelFallbacks.WithLabelValues(artifact).Inc()
}

// RecordExploreSwap increments the epsilon-greedy perturbation counter.
func RecordExploreSwap() {
	globalManager.exploreSwaps.Inc()
}

// UpdateImpressionsTracked sets the tracked-impression gauge.
func UpdateImpressionsTracked(n int) {
	globalManager.impressionsTracked.Set(float64(n))
}

// RecordBanditUpdate increments the bandit update counter.
func RecordBanditUpdate() {
	globalManager.banditUpdates.Inc()
}

// UpdateBanditArms sets the tracked-arm gauge.
func UpdateBanditArms(n int) {
	globalManager.banditArms.Set(float64(n))
}

// RecordFeedback counts one feedback event by action.
func RecordFeedback(action string) {
	globalManager.feedbackByAction.WithLabelValues(action).Inc()
}

// UpdateFeedbackQueueSize sets the feedback queue size gauge.
func UpdateFeedbackQueueSize(size int) {
	globalManager.feedbackQueueSize.Set(float64(size))
}

// UpdateFeedbackQueueCapacity sets the feedback queue capacity gauge.
func UpdateFeedbackQueueCapacity(capacity int) {
	globalManager.feedbackQueueCapacity.Set(float64(capacity))
}

// RecordFeedbackEnqueueError counts one rejected feedback event.
func RecordFeedbackEnqueueError() {
	globalManager.feedbackEnqueueErrors.Inc()
}

// RecordWorkerError counts one feedback worker failure.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateGraphSize sets the relationship graph gauges.
func UpdateGraphSize(nodes, edges int) {
	globalManager.graphNodes.Set(float64(nodes))
	globalManager.graphEdges.Set(float64(edges))
}

// UpdateEmbeddingVectors sets the loaded-vector gauge for one repository.
func UpdateEmbeddingVectors(repository string, n int) {
	globalManager.embeddingVectors.WithLabelValues(repository).Set(float64(n))
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
