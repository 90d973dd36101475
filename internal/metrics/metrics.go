package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Core request/hit/miss counters
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generation_requests_total",
			Help: "Total number of generation requests",
		},
		[]string{"operation"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"operation"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"operation"},
	)

	// Per-attempt outcomes from the retry loop, labeled by classified kind
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generation_attempts_total",
			Help: "Total number of upstream generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallbacks_total",
			Help: "Total number of degraded responses by source",
		},
		[]string{"operation", "source"},
	)

	CacheBackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_backend_errors_total",
			Help: "Total number of absorbed cache backend errors",
		},
		[]string{"backend", "operation"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_generation_duration_seconds",
			Help:    "Duration of generation including retries",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"operation"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_cache_operation_duration_seconds",
			Help:    "Duration of cache operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecordGenerationRequest records an incoming generation request
func RecordGenerationRequest(operation string) {
	GenerationRequests.WithLabelValues(operation).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit(operation string) {
	CacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(operation string) {
	CacheMisses.WithLabelValues(operation).Inc()
}

// RecordGenerationAttempt records one upstream attempt outcome
// ("success" or the classified error kind)
func RecordGenerationAttempt(outcome string) {
	GenerationAttempts.WithLabelValues(outcome).Inc()
}

// RecordFallback records a degraded response and where it came from
func RecordFallback(operation, source string) {
	Fallbacks.WithLabelValues(operation, source).Inc()
}

// RecordCacheBackendError records an absorbed backend failure
func RecordCacheBackendError(backend, operation string) {
	CacheBackendErrors.WithLabelValues(backend, operation).Inc()
}

// TimeGeneration returns a timer function for measuring a generation run
func TimeGeneration(operation string) func() {
	timer := prometheus.NewTimer(GenerationDuration.WithLabelValues(operation))
	return func() {
		timer.ObserveDuration()
	}
}

// TimeCacheOperation returns a timer function for measuring a cache operation
func TimeCacheOperation(operation string) func() {
	timer := prometheus.NewTimer(CacheOperationDuration.WithLabelValues(operation))
	return func() {
		timer.ObserveDuration()
	}
}
