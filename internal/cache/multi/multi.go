package multi

import (
	"errors"

	"go.uber.org/zap"

	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/models"
)

// Ensure MultiStore implements interfaces.Store
var _ interfaces.Store = (*MultiStore)(nil)

// MultiStore is a composite store layered over multiple store
// implementations, tried in order. Reads return the first hit; writes and
// invalidations go to every tier.
type MultiStore struct {
	stores []interfaces.Store
	logger *zap.Logger
}

// NewMultiStore creates a composite store over the provided tiers.
func NewMultiStore(stores []interfaces.Store, logger *zap.Logger) interfaces.Store {
	return &MultiStore{
		stores: stores,
		logger: logger,
	}
}

// Get returns the first fresh entry found across the tiers.
func (m *MultiStore) Get(key string) (*models.CacheEntry, bool) {
	if len(m.stores) == 0 {
		m.logger.Warn("no stores available for get operation", zap.String("key", key))
		return nil, false
	}

	for _, store := range m.stores {
		if entry, found := store.Get(key); found {
			return entry, true
		}
	}
	return nil, false
}

// GetStale returns the first stale-servable entry found across the tiers.
func (m *MultiStore) GetStale(key string) (*models.CacheEntry, bool) {
	for _, store := range m.stores {
		if entry, found := store.GetStale(key); found {
			return entry, true
		}
	}
	return nil, false
}

// Set writes the entry to every tier; succeeds if any tier accepted it.
func (m *MultiStore) Set(key string, entry *models.CacheEntry) bool {
	if len(m.stores) == 0 {
		m.logger.Warn("no stores available for set operation", zap.String("key", key))
		return false
	}

	ok := false
	for _, store := range m.stores {
		if store.Set(key, entry) {
			ok = true
		}
	}
	return ok
}

// Invalidate removes matching entries from every tier and returns the
// total number removed across backends.
func (m *MultiStore) Invalidate(pattern string) int {
	removed := 0
	for _, store := range m.stores {
		removed += store.Invalidate(pattern)
	}
	return removed
}

// Close closes every tier.
func (m *MultiStore) Close() error {
	var errs []error
	for _, store := range m.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
