package multi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-ai-cache/internal/interfaces"
	"go-ai-cache/internal/models"
)

// fakeStore is an in-memory Store for exercising tier composition.
type fakeStore struct {
	entries   map[string]*models.CacheEntry
	setFails  bool
	gets      int
	staleGets int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]*models.CacheEntry{}}
}

func (f *fakeStore) Get(key string) (*models.CacheEntry, bool) {
	f.gets++
	entry, ok := f.entries[key]
	return entry, ok
}

func (f *fakeStore) GetStale(key string) (*models.CacheEntry, bool) {
	f.staleGets++
	entry, ok := f.entries[key]
	return entry, ok
}

func (f *fakeStore) Set(key string, entry *models.CacheEntry) bool {
	if f.setFails {
		return false
	}
	f.entries[key] = entry
	return true
}

func (f *fakeStore) Invalidate(pattern string) int {
	n := len(f.entries)
	f.entries = map[string]*models.CacheEntry{}
	return n
}

func (f *fakeStore) Close() error { return nil }

func testEntry(payload string) *models.CacheEntry {
	return models.NewCacheEntry(json.RawMessage(payload), "toc", "hash", time.Hour)
}

func TestMultiStore_GetFirstHitWins(t *testing.T) {
	first := newFakeStore()
	second := newFakeStore()
	second.entries["k"] = testEntry(`{"from":"second"}`)

	store := NewMultiStore([]interfaces.Store{first, second}, zap.NewNop())

	got, found := store.Get("k")
	require.True(t, found)
	assert.JSONEq(t, `{"from":"second"}`, string(got.Data))
	assert.Equal(t, 1, first.gets)
	assert.Equal(t, 1, second.gets)
}

func TestMultiStore_GetStopsAtFirstTier(t *testing.T) {
	first := newFakeStore()
	first.entries["k"] = testEntry(`{"from":"first"}`)
	second := newFakeStore()

	store := NewMultiStore([]interfaces.Store{first, second}, zap.NewNop())

	got, found := store.Get("k")
	require.True(t, found)
	assert.JSONEq(t, `{"from":"first"}`, string(got.Data))
	assert.Equal(t, 0, second.gets)
}

func TestMultiStore_GetMissAcrossAllTiers(t *testing.T) {
	store := NewMultiStore([]interfaces.Store{newFakeStore(), newFakeStore()}, zap.NewNop())

	_, found := store.Get("missing")
	assert.False(t, found)
}

func TestMultiStore_SetWritesAllTiers(t *testing.T) {
	first := newFakeStore()
	second := newFakeStore()

	store := NewMultiStore([]interfaces.Store{first, second}, zap.NewNop())

	assert.True(t, store.Set("k", testEntry(`{}`)))
	assert.Contains(t, first.entries, "k")
	assert.Contains(t, second.entries, "k")
}

func TestMultiStore_SetSucceedsIfAnyTierAccepts(t *testing.T) {
	first := newFakeStore()
	first.setFails = true
	second := newFakeStore()

	store := NewMultiStore([]interfaces.Store{first, second}, zap.NewNop())

	assert.True(t, store.Set("k", testEntry(`{}`)))

	first.setFails = true
	second.setFails = true
	assert.False(t, store.Set("k2", testEntry(`{}`)))
}

func TestMultiStore_GetStaleFallsThroughTiers(t *testing.T) {
	first := newFakeStore()
	second := newFakeStore()
	second.entries["k"] = testEntry(`{"stale":true}`)

	store := NewMultiStore([]interfaces.Store{first, second}, zap.NewNop())

	got, found := store.GetStale("k")
	require.True(t, found)
	assert.JSONEq(t, `{"stale":true}`, string(got.Data))
}

func TestMultiStore_InvalidateSumsTierCounts(t *testing.T) {
	first := newFakeStore()
	first.entries["a"] = testEntry(`{}`)
	second := newFakeStore()
	second.entries["a"] = testEntry(`{}`)
	second.entries["b"] = testEntry(`{}`)

	store := NewMultiStore([]interfaces.Store{first, second}, zap.NewNop())

	assert.Equal(t, 3, store.Invalidate("*"))
}

func TestMultiStore_EmptyTierList(t *testing.T) {
	store := NewMultiStore(nil, zap.NewNop())

	_, found := store.Get("k")
	assert.False(t, found)
	assert.False(t, store.Set("k", testEntry(`{}`)))
	assert.Equal(t, 0, store.Invalidate("*"))
	assert.NoError(t, store.Close())
}
