package scratch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := scratch.NewMemoryCache(10)
	ctx := context.Background()

	entry := &scratch.CacheEntry{
		Data:      []byte(`{"id":1}`),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		ETag:      "abc123",
	}

	err := cache.Set(ctx, "key1", entry)
	require.NoError(t, err)

	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.ETag, retrieved.ETag)
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := scratch.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, scratch.ErrCacheKeyNotFound)
	assert.Contains(t, err.Error(), "key not found")
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := scratch.NewMemoryCache(10)
	ctx := context.Background()

	_ = cache.Set(ctx, "key1", &scratch.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	})

	_, err := cache.Get(ctx, "key1")
	require.ErrorIs(t, err, scratch.ErrCacheExpired)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := scratch.NewMemoryCache(10)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_ = cache.Set(ctx, key, &scratch.CacheEntry{Data: []byte(key), ExpiresAt: time.Now().Add(time.Hour)})
	}

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "b"))
	assert.False(t, cache.Has(ctx, "c"))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := scratch.NewMemoryCache(2)
	ctx := context.Background()
	entry := func() *scratch.CacheEntry {
		return &scratch.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(time.Hour)}
	}

	_ = cache.Set(ctx, "a", entry())
	_ = cache.Set(ctx, "b", entry())

	_, err := cache.Get(ctx, "a")
	require.NoError(t, err)

	_ = cache.Set(ctx, "c", entry())

	assert.True(t, cache.Has(ctx, "a"))
	assert.False(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_Cleanup(t *testing.T) {
	t.Parallel()

	cache := scratch.NewMemoryCache(10)
	ctx := context.Background()

	_ = cache.Set(ctx, "expired", &scratch.CacheEntry{Data: []byte("expired"), ExpiresAt: time.Now().Add(-time.Hour)})
	_ = cache.Set(ctx, "valid", &scratch.CacheEntry{Data: []byte("valid"), ExpiresAt: time.Now().Add(time.Hour)})

	cache.Cleanup()

	assert.True(t, cache.Has(ctx, "valid"))
	assert.Equal(t, 1, cache.Len())
}

func TestCacheManager_GetCacheKey(t *testing.T) {
	t.Parallel()

	manager := scratch.NewCacheManager(nil, nil)

	assert.Equal(t, "GET:/users/alice", manager.GetCacheKey("GET", "/users/alice", nil))

	key := manager.GetCacheKey("GET", "/users/alice/followers", map[string]string{"offset": "40", "limit": "40"})
	assert.Equal(t, "GET:/users/alice/followers:limit=40&offset=40", key)
}

func TestCacheManager_Stats(t *testing.T) {
	t.Parallel()

	manager := scratch.NewCacheManager(scratch.NewMemoryCache(10), nil)
	ctx := context.Background()

	require.NoError(t, manager.SetWithETag(ctx, "key", []byte("data"), "etag", time.Hour))

	data, err := manager.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	_, err = manager.Get(ctx, "missing")
	require.Error(t, err)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 0.5, stats.GetHitRate(), 0.0001)
	assert.InDelta(t, 0.0, (&scratch.CacheStats{}).GetHitRate(), 0.0001)
}

func TestCachingPolicy_ShouldCache(t *testing.T) {
	t.Parallel()

	policy := scratch.DefaultCachingPolicy()

	assert.True(t, policy.ShouldCache("GET", "/users/alice", 200))
	assert.False(t, policy.ShouldCache("POST", "/users/alice", 200))
	assert.False(t, policy.ShouldCache("GET", "/users/alice", 404))
	assert.False(t, policy.ShouldCache("GET", "/session", 200))

	custom := &scratch.CachingPolicy{
		CacheGET:     true,
		CachePOST:    true,
		CacheErrors:  true,
		IncludePaths: []string{"/projects"},
	}

	assert.True(t, custom.ShouldCache("GET", "/projects/1", 200))
	assert.False(t, custom.ShouldCache("GET", "/users/alice", 200))
	assert.True(t, custom.ShouldCache("POST", "/projects/1", 201))
	assert.True(t, custom.ShouldCache("GET", "/projects/1", 404))
}
