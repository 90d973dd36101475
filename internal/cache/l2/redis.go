package l2

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go-ai-cache/internal/config"
	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/metrics"
	"go-ai-cache/internal/models"
)

// invalidateTimeout bounds a whole scan-and-delete pass; invalidation is
// administrative, not hot-path, so it gets a generous budget.
const invalidateTimeout = 30 * time.Second

// scanBatchSize is the COUNT hint for SCAN during invalidation.
const scanBatchSize = 100

// Ensure RedisStore implements interfaces.Store
var _ interfaces.Store = (*RedisStore)(nil)

// RedisStore implements the L2 store on Redis. Entries are retained for
// staleFactor times their fresh TTL via backend-native expiry; Get
// enforces freshness at read time, GetStale serves anything Redis still
// holds. All backend failures are absorbed and logged.
type RedisStore struct {
	client      interfaces.RedisClient
	config      *config.RedisConfig
	staleFactor int
	logger      *zap.Logger
}

// NewRedisStore creates a Redis-backed store with the provided client.
func NewRedisStore(cfg *config.RedisConfig, client interfaces.RedisClient, staleFactor int, logger *zap.Logger) interfaces.Store {
	if staleFactor < 1 {
		staleFactor = 1
	}
	return &RedisStore{
		client:      client,
		config:      cfg,
		staleFactor: staleFactor,
		logger:      logger,
	}
}

// Get retrieves a fresh entry from Redis.
func (s *RedisStore) Get(key string) (*models.CacheEntry, bool) {
	entry, ok := s.fetch(key)
	if !ok {
		return nil, false
	}
	if !entry.IsFresh(time.Now()) {
		return nil, false
	}
	return entry, true
}

// GetStale retrieves an entry regardless of freshness. Redis evicts
// entries at the end of their stale grace window, so anything still
// present is servable as a degraded answer.
func (s *RedisStore) GetStale(key string) (*models.CacheEntry, bool) {
	return s.fetch(key)
}

func (s *RedisStore) fetch(key string) (*models.CacheEntry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.GetReadTimeout())
	defer cancel()

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache backend get failed", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheBackendError("redis", "get")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		s.client.Del(context.Background(), key)
		return nil, false
	}

	return &entry, true
}

// Set stores an entry with backend-native expiry covering the stale
// grace window. Reports false instead of failing on backend errors.
func (s *RedisStore) Set(key string, entry *models.CacheEntry) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.GetSendTimeout())
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return false
	}

	retention := time.Duration(entry.Metadata.TTLSeconds*s.staleFactor) * time.Second
	if err := s.client.Set(ctx, key, data, retention).Err(); err != nil {
		s.logger.Warn("cache backend set failed", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheBackendError("redis", "set")
		return false
	}
	return true
}

// Invalidate removes keys matching a glob pattern via SCAN and returns
// the number deleted. Backend errors end the pass early with the count
// so far.
func (s *RedisStore) Invalidate(pattern string) int {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	var removed int
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			s.logger.Warn("cache scan failed", zap.String("pattern", pattern), zap.Error(err))
			metrics.RecordCacheBackendError("redis", "invalidate")
			return removed
		}

		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				s.logger.Warn("cache delete failed", zap.String("pattern", pattern), zap.Error(err))
				metrics.RecordCacheBackendError("redis", "invalidate")
				return removed
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
