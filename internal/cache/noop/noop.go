package noop

import (
	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/models"
)

// Ensure NoOpStore implements interfaces.Store
var _ interfaces.Store = (*NoOpStore)(nil)

// NoOpStore is the store used when caching is disabled.
type NoOpStore struct{}

// NewNoOpStore creates a new no-operation store instance.
func NewNoOpStore() interfaces.Store {
	return &NoOpStore{}
}

// Get always reports a miss.
func (n *NoOpStore) Get(key string) (*models.CacheEntry, bool) {
	return nil, false
}

// GetStale always reports a miss.
func (n *NoOpStore) GetStale(key string) (*models.CacheEntry, bool) {
	return nil, false
}

// Set does nothing and reports failure so callers never assume a write
// landed.
func (n *NoOpStore) Set(key string, entry *models.CacheEntry) bool {
	return false
}

// Invalidate does nothing.
func (n *NoOpStore) Invalidate(pattern string) int {
	return 0
}

// Close does nothing.
func (n *NoOpStore) Close() error {
	return nil
}
