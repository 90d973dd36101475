package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-ai-cache/internal/models"
	"go-ai-cache/internal/resilience"
)

// fakeStore is an in-memory Store with switches for staleness and a
// simulated backend outage.
type fakeStore struct {
	entries map[string]*models.CacheEntry
	stale   map[string]bool
	down    bool
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: map[string]*models.CacheEntry{},
		stale:   map[string]bool{},
	}
}

func (f *fakeStore) Get(key string) (*models.CacheEntry, bool) {
	if f.down || f.stale[key] {
		return nil, false
	}
	entry, ok := f.entries[key]
	return entry, ok
}

func (f *fakeStore) GetStale(key string) (*models.CacheEntry, bool) {
	if f.down {
		return nil, false
	}
	entry, ok := f.entries[key]
	return entry, ok
}

func (f *fakeStore) Set(key string, entry *models.CacheEntry) bool {
	if f.down {
		return false
	}
	f.entries[key] = entry
	f.sets++
	return true
}

func (f *fakeStore) Invalidate(pattern string) int {
	if f.down {
		return 0
	}
	n := len(f.entries)
	f.entries = map[string]*models.CacheEntry{}
	return n
}

func (f *fakeStore) Close() error { return nil }

type statusErr struct {
	status int
}

func (e *statusErr) Error() string   { return fmt.Sprintf("status %d", e.status) }
func (e *statusErr) HTTPStatus() int { return e.status }

func newTestService(store *fakeStore) *Service {
	retrier := resilience.NewRetrier(resilience.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
	}, zap.NewNop())
	return NewService(store, retrier, time.Hour, zap.NewNop())
}

func succeedsWith(payload string, calls *int) func(context.Context) (json.RawMessage, error) {
	return func(context.Context) (json.RawMessage, error) {
		*calls++
		return json.RawMessage(payload), nil
	}
}

func failsWith(err error, calls *int) func(context.Context) (json.RawMessage, error) {
	return func(context.Context) (json.RawMessage, error) {
		*calls++
		return nil, err
	}
}

func defaultTOC() json.RawMessage {
	return json.RawMessage(`{"chapters":[],"total_chapters":0}`)
}

func TestService_GenerateThenCacheHit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	calls := 0

	req := GenerationRequest{
		Operation:    "toc",
		Params:       map[string]interface{}{"summary": "Book about AI"},
		Generate:     succeedsWith(`{"chapters":[{"title":"Intro"}],"total_chapters":1}`, &calls),
		BuildDefault: defaultTOC,
		TTL:          100 * time.Second,
	}

	first, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.False(t, first.Fallback)
	assert.Equal(t, SourceGenerated, first.Source)
	assert.JSONEq(t, `{"chapters":[{"title":"Intro"}],"total_chapters":1}`, string(first.Payload))
	assert.Equal(t, 1, calls)

	// Identical operation and params hit the cache; the generator must
	// not run again.
	req.Generate = failsWith(errors.New("must not be invoked"), &calls)
	second, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.False(t, second.Fallback)
	assert.JSONEq(t, string(first.Payload), string(second.Payload))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Key, second.Key)
}

func TestService_RetryableFailureFallsBackToDefault(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	calls := 0

	result, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "toc",
		Params:       map[string]interface{}{"summary": "Book about AI"},
		Generate:     failsWith(errors.New("dial tcp: connection refused"), &calls),
		BuildDefault: defaultTOC,
		MaxRetries:   3,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.False(t, result.Cached)
	assert.True(t, result.Fallback)
	assert.Equal(t, SourceDefault, result.Source)
	assert.JSONEq(t, `{"chapters":[],"total_chapters":0}`, string(result.Payload))
	assert.Equal(t, 0, store.sets, "degraded default must not be cached")
}

func TestService_TerminalErrorInvokesGeneratorOnce(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	calls := 0

	result, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "questions",
		Params:       map[string]interface{}{"chapter": "Intro"},
		Generate:     failsWith(&statusErr{status: 401}, &calls),
		BuildDefault: func() json.RawMessage { return json.RawMessage(`{"questions":[]}`) },
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "terminal errors must not be retried")
	assert.True(t, result.Fallback)
	assert.Equal(t, SourceDefault, result.Source)
}

func TestService_StaleCacheBeatsDefaultOnFallback(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	calls := 0

	params := map[string]interface{}{"summary": "Book about AI"}

	// Seed a previously generated payload, then force it stale so the
	// hot-path lookup misses.
	seed, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "toc",
		Params:       params,
		Generate:     succeedsWith(`{"chapters":[{"title":"Old"}],"total_chapters":1}`, &calls),
		BuildDefault: defaultTOC,
	})
	require.NoError(t, err)
	store.stale[seed.Key] = true

	result, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "toc",
		Params:       params,
		Generate:     failsWith(&statusErr{status: 503}, &calls),
		BuildDefault: defaultTOC,
	})

	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.True(t, result.Cached)
	assert.Equal(t, SourceCache, result.Source)
	assert.JSONEq(t, `{"chapters":[{"title":"Old"}],"total_chapters":1}`, string(result.Payload))
}

func TestService_CacheOutageDoesNotFailGeneration(t *testing.T) {
	store := newFakeStore()
	store.down = true
	svc := newTestService(store)
	calls := 0

	result, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "draft",
		Params:       map[string]interface{}{"chapter": "Intro"},
		Generate:     succeedsWith(`{"content":"..."}`, &calls),
		BuildDefault: func() json.RawMessage { return json.RawMessage(`{"content":""}`) },
	})

	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.False(t, result.Fallback)
	assert.JSONEq(t, `{"content":"..."}`, string(result.Payload))
}

func TestService_WriteThroughRecordsMetadata(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	calls := 0

	result, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "toc",
		Params:       map[string]interface{}{"summary": "short"},
		Generate:     succeedsWith(`{}`, &calls),
		BuildDefault: defaultTOC,
		TTL:          30 * time.Second,
	})
	require.NoError(t, err)

	entry, ok := store.entries[result.Key]
	require.True(t, ok)
	assert.Equal(t, "toc", entry.Metadata.Operation)
	assert.Equal(t, 30, entry.Metadata.TTLSeconds)
	assert.NotEmpty(t, entry.Metadata.InputHash)
	assert.WithinDuration(t, time.Now().UTC(), entry.Metadata.CachedAt, 5*time.Second)
}

func TestService_ZeroTTLUsesDefault(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	calls := 0

	result, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "toc",
		Params:       nil,
		Generate:     succeedsWith(`{}`, &calls),
		BuildDefault: defaultTOC,
	})
	require.NoError(t, err)

	entry := store.entries[result.Key]
	require.NotNil(t, entry)
	assert.Equal(t, 3600, entry.Metadata.TTLSeconds)
}

func TestService_MalformedRequests(t *testing.T) {
	svc := newTestService(newFakeStore())
	generate := func(context.Context) (json.RawMessage, error) { return json.RawMessage(`{}`), nil }

	_, err := svc.Execute(context.Background(), GenerationRequest{
		Generate:     generate,
		BuildDefault: defaultTOC,
	})
	assert.Error(t, err)

	_, err = svc.Execute(context.Background(), GenerationRequest{
		Operation:    "toc",
		BuildDefault: defaultTOC,
	})
	assert.Error(t, err)

	_, err = svc.Execute(context.Background(), GenerationRequest{
		Operation: "toc",
		Generate:  generate,
	})
	assert.Error(t, err)
}

func TestService_Invalidate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	calls := 0

	_, err := svc.Execute(context.Background(), GenerationRequest{
		Operation:    "toc",
		Params:       map[string]interface{}{"summary": "a"},
		Generate:     succeedsWith(`{}`, &calls),
		BuildDefault: defaultTOC,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Invalidate("toc:*"))
}
