package interfaces

import (
	"go-ai-cache/internal/models"
)

//go:generate mockgen -package=mock -source=cache.go -destination=mock/cache.go

// Store is the contract for cache store implementations.
//
// Stores are best-effort: backend failures are absorbed, never returned.
// Get reports absent, Set reports false, Invalidate reports zero. A broken
// backend degrades the system to slow-but-correct.
type Store interface {
	// Get returns the entry for key if it is present and still fresh.
	// Reading does not refresh the TTL.
	Get(key string) (*models.CacheEntry, bool)

	// GetStale returns the entry for key if it is still retained by the
	// backend, regardless of freshness. Serves the stale-if-error path.
	GetStale(key string) (*models.CacheEntry, bool)

	// Set stores the entry under key and reports whether the write
	// succeeded.
	Set(key string, entry *models.CacheEntry) bool

	// Invalidate removes entries whose keys match a glob pattern and
	// returns the number removed.
	Invalidate(pattern string) int

	// Close releases backend resources.
	Close() error
}
