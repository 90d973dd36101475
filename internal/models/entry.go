package models

import (
	"encoding/json"
	"time"
)

// EntryMetadata records how and when a cached payload was produced.
type EntryMetadata struct {
	CachedAt   time.Time `json:"cached_at"`
	Operation  string    `json:"operation"`
	InputHash  string    `json:"input_hash"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// CacheEntry is the stored envelope for a generated payload.
type CacheEntry struct {
	Data     json.RawMessage `json:"data"`
	Metadata EntryMetadata   `json:"metadata"`
}

// NewCacheEntry builds an entry timestamped now.
func NewCacheEntry(data json.RawMessage, operation, inputHash string, ttl time.Duration) *CacheEntry {
	return &CacheEntry{
		Data: data,
		Metadata: EntryMetadata{
			CachedAt:   time.Now().UTC(),
			Operation:  operation,
			InputHash:  inputHash,
			TTLSeconds: int(ttl / time.Second),
		},
	}
}

// FreshUntil returns the instant the entry stops being fresh.
func (e *CacheEntry) FreshUntil() time.Time {
	return e.Metadata.CachedAt.Add(time.Duration(e.Metadata.TTLSeconds) * time.Second)
}

// IsFresh reports whether the entry is still within its fresh TTL at now.
func (e *CacheEntry) IsFresh(now time.Time) bool {
	return now.Before(e.FreshUntil())
}

// IsExpired reports whether the entry has outlived its stale grace window
// and must not be served even as a degraded answer. staleFactor is the
// multiple of the fresh TTL that the store retains entries for.
func (e *CacheEntry) IsExpired(now time.Time, staleFactor int) bool {
	if staleFactor < 1 {
		staleFactor = 1
	}
	retention := time.Duration(e.Metadata.TTLSeconds*staleFactor) * time.Second
	return !now.Before(e.Metadata.CachedAt.Add(retention))
}
