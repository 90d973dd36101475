package metrics

import (
	"testing"
)

func TestMetrics(t *testing.T) {
	// Metrics are package-level promauto variables; these subtests verify
	// the record helpers don't panic with typical label values.

	t.Run("RecordGenerationRequest", func(t *testing.T) {
		RecordGenerationRequest("toc")
		RecordGenerationRequest("questions")
	})

	t.Run("RecordCacheHit", func(t *testing.T) {
		RecordCacheHit("toc")
	})

	t.Run("RecordCacheMiss", func(t *testing.T) {
		RecordCacheMiss("draft")
	})

	t.Run("RecordGenerationAttempt", func(t *testing.T) {
		RecordGenerationAttempt("success")
		RecordGenerationAttempt("rate_limited")
	})

	t.Run("RecordFallback", func(t *testing.T) {
		RecordFallback("toc", "cache")
		RecordFallback("toc", "default")
	})

	t.Run("RecordCacheBackendError", func(t *testing.T) {
		RecordCacheBackendError("redis", "get")
	})

	t.Run("TimeGeneration", func(t *testing.T) {
		timer := TimeGeneration("toc")
		timer()
	})

	t.Run("TimeCacheOperation", func(t *testing.T) {
		timer := TimeCacheOperation("get")
		timer()
	})
}
