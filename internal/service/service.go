package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-ai-cache/internal/cache"
	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/metrics"
	"go-ai-cache/internal/models"
	"go-ai-cache/internal/resilience"
)

// Payload sources reported in results.
const (
	SourceGenerated = "generated"
	SourceCache     = "cache"
	SourceDefault   = "default"
)

// GenerationRequest describes one cacheable generation call. Generate is
// the fallible upstream call; BuildDefault must be total and produce the
// degraded payload for this operation.
type GenerationRequest struct {
	Operation    string
	Params       map[string]interface{}
	Generate     func(ctx context.Context) (json.RawMessage, error)
	BuildDefault func() json.RawMessage
	// TTL for the write-through cache entry; zero uses the service default.
	TTL time.Duration
	// MaxRetries overrides the retrier's attempt ceiling; zero uses the
	// configured default.
	MaxRetries int
}

// Result is the outcome of Execute.
type Result struct {
	Payload  json.RawMessage
	Cached   bool
	Fallback bool
	Source   string
	Key      string
}

// Service is the single entry point for AI generation requests. It
// composes key derivation, the cache store, the backoff retrier and the
// fallback resolver; it holds no per-request state, so concurrent calls
// are safe. Concurrent identical requests may both reach the generator,
// which is accepted because writes to the same key are idempotent.
type Service struct {
	store      interfaces.Store
	retrier    *resilience.Retrier
	fallback   *FallbackResolver
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewService creates the orchestrating service.
func NewService(store interfaces.Store, retrier *resilience.Retrier, defaultTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		retrier:    retrier,
		fallback:   NewFallbackResolver(store, logger),
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Execute runs one generation request through the cache, retry and
// fallback chain. Upstream failures never surface: they resolve to a
// stale cached payload or the operation's default. The returned error is
// non-nil only when the request itself is malformed.
func (s *Service) Execute(ctx context.Context, req GenerationRequest) (*Result, error) {
	if req.Operation == "" {
		return nil, errors.New("operation is required")
	}
	if req.Generate == nil {
		return nil, errors.New("generate callback is required")
	}
	if req.BuildDefault == nil {
		return nil, errors.New("default payload callback is required")
	}

	key := cache.DeriveKey(req.Operation, req.Params)
	metrics.RecordGenerationRequest(req.Operation)

	if entry, found := s.store.Get(key); found {
		metrics.RecordCacheHit(req.Operation)
		s.logger.Debug("cache hit",
			zap.String("operation", req.Operation),
			zap.String("key", key))
		return &Result{Payload: entry.Data, Cached: true, Source: SourceCache, Key: key}, nil
	}
	metrics.RecordCacheMiss(req.Operation)
	s.logger.Debug("cache miss",
		zap.String("operation", req.Operation),
		zap.String("key", key))

	var payload json.RawMessage
	timer := metrics.TimeGeneration(req.Operation)
	err := s.retrier.DoWithAttempts(ctx, req.MaxRetries, func(ctx context.Context) error {
		out, genErr := req.Generate(ctx)
		if genErr != nil {
			return genErr
		}
		payload = out
		return nil
	})
	timer()

	if err != nil {
		kind := resilience.KindUnknown
		var cerr *resilience.ClassifiedError
		if errors.As(err, &cerr) {
			kind = cerr.Classification.Kind
		}
		s.logger.Warn("generation failed, resolving fallback",
			zap.String("operation", req.Operation),
			zap.String("key", key),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return s.fallback.Resolve(req.Operation, key, req.BuildDefault), nil
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	entry := models.NewCacheEntry(payload, req.Operation, cache.ParamsHash(req.Operation, req.Params), ttl)
	if !s.store.Set(key, entry) {
		// Best effort: a failed write-through never fails the request.
		s.logger.Warn("write-through cache set failed",
			zap.String("operation", req.Operation),
			zap.String("key", key))
	}

	return &Result{Payload: payload, Source: SourceGenerated, Key: key}, nil
}

// Invalidate removes cache entries whose keys match a glob pattern and
// returns the number removed. Administrative, not on the request path.
func (s *Service) Invalidate(pattern string) int {
	timer := metrics.TimeCacheOperation("invalidate")
	defer timer()
	removed := s.store.Invalidate(pattern)
	s.logger.Info("cache invalidation",
		zap.String("pattern", pattern),
		zap.Int("removed", removed))
	return removed
}
