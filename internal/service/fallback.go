package service

import (
	"encoding/json"

	"go.uber.org/zap"

	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/metrics"
)

// FallbackResolver produces the degraded answer once generation is
// exhausted: a stale cache entry if the backend still holds one,
// otherwise the operation's static default. The default is never written
// back to the cache, so a degraded answer cannot calcify; the next
// request with the same key re-attempts generation.
type FallbackResolver struct {
	store  interfaces.Store
	logger *zap.Logger
}

// NewFallbackResolver creates a resolver over the given store.
func NewFallbackResolver(store interfaces.Store, logger *zap.Logger) *FallbackResolver {
	return &FallbackResolver{
		store:  store,
		logger: logger,
	}
}

// Resolve returns a degraded result for the key. buildDefault must be
// total; by contract it never fails.
func (f *FallbackResolver) Resolve(operation, key string, buildDefault func() json.RawMessage) *Result {
	if entry, found := f.store.GetStale(key); found {
		metrics.RecordFallback(operation, SourceCache)
		f.logger.Info("serving stale cached payload",
			zap.String("operation", operation),
			zap.String("key", key))
		return &Result{
			Payload:  entry.Data,
			Cached:   true,
			Fallback: true,
			Source:   SourceCache,
			Key:      key,
		}
	}

	metrics.RecordFallback(operation, SourceDefault)
	f.logger.Info("serving default payload",
		zap.String("operation", operation),
		zap.String("key", key))
	return &Result{
		Payload:  buildDefault(),
		Fallback: true,
		Source:   SourceDefault,
		Key:      key,
	}
}
