package l1

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/metrics"
	"go-ai-cache/internal/models"
)

// Ensure MemoryStore implements interfaces.Store
var _ interfaces.Store = (*MemoryStore)(nil)

// MemoryStore implements the in-process store on BigCache. BigCache only
// supports a global life window, so per-entry freshness and the stale
// grace window are enforced at read time from entry metadata; the life
// window acts as a coarse upper bound on retention.
type MemoryStore struct {
	cache       *bigcache.BigCache
	staleFactor int
	logger      *zap.Logger
}

// NewMemoryStore creates a BigCache-backed store. maxRetention bounds how
// long any entry can survive regardless of its own TTL; sizeMB caps the
// cache's memory footprint.
func NewMemoryStore(sizeMB int, maxRetention time.Duration, staleFactor int, logger *zap.Logger) (interfaces.Store, error) {
	if maxRetention < 10*time.Minute {
		maxRetention = 10 * time.Minute
	}
	if staleFactor < 1 {
		staleFactor = 1
	}

	cfg := bigcache.DefaultConfig(maxRetention)
	cfg.HardMaxCacheSize = sizeMB
	cfg.Verbose = false
	cfg.MaxEntrySize = 1024 * 1024 // 1MB max entry size

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return &MemoryStore{
		cache:       cache,
		staleFactor: staleFactor,
		logger:      logger,
	}, nil
}

// Get retrieves a fresh entry.
func (s *MemoryStore) Get(key string) (*models.CacheEntry, bool) {
	entry, ok := s.fetch(key)
	if !ok {
		return nil, false
	}
	if !entry.IsFresh(time.Now()) {
		return nil, false
	}
	return entry, true
}

// GetStale retrieves an entry regardless of freshness, as long as it is
// still inside its stale grace window.
func (s *MemoryStore) GetStale(key string) (*models.CacheEntry, bool) {
	return s.fetch(key)
}

func (s *MemoryStore) fetch(key string) (*models.CacheEntry, bool) {
	data, err := s.cache.Get(key)
	if err != nil {
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheBackendError("memory", "decode")
		_ = s.cache.Delete(key)
		return nil, false
	}

	if entry.IsExpired(time.Now(), s.staleFactor) {
		_ = s.cache.Delete(key)
		return nil, false
	}

	return &entry, true
}

// Set stores an entry. Reports false instead of failing.
func (s *MemoryStore) Set(key string, entry *models.CacheEntry) bool {
	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheBackendError("memory", "encode")
		return false
	}

	if err := s.cache.Set(key, data); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheBackendError("memory", "set")
		return false
	}
	return true
}

// Invalidate removes keys matching a glob pattern and returns the number
// removed.
func (s *MemoryStore) Invalidate(pattern string) int {
	var matched []string

	it := s.cache.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			break
		}
		if ok, _ := path.Match(pattern, info.Key()); ok {
			matched = append(matched, info.Key())
		}
	}

	removed := 0
	for _, key := range matched {
		if err := s.cache.Delete(key); err == nil {
			removed++
		}
	}
	return removed
}

// Close closes the cache.
func (s *MemoryStore) Close() error {
	return s.cache.Close()
}
