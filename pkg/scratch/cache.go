package scratch

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrCacheKeyNotFound = errors.New("key not found")
	ErrCacheExpired     = errors.New("entry expired")
)

// Cache stores raw response bodies keyed by request.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a cached response body.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry is past its expiry time.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// CacheOptions are the options shared by every cache backend.
type CacheOptions struct {
	// TTL is the lifetime of a cached response.
	TTL time.Duration
	// MaxSize bounds the number of entries of bounded backends.
	MaxSize int
	// EnableETags keeps response ETags alongside cached bodies.
	EnableETags bool
}

// DefaultCacheOptions returns default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		TTL:         constants.DefaultCacheTTL,
		MaxSize:     constants.DefaultCacheSize,
		EnableETags: true,
	}
}

// MemoryCache is a bounded in-process cache. When full, the least recently
// used entry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	items   map[string]*list.Element
}

type memoryItem struct {
	key   string
	entry *CacheEntry
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element),
	}
}

// Get returns the entry for key.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return nil, ErrCacheKeyNotFound
	}

	item, _ := element.Value.(*memoryItem)
	if item.entry.Expired() {
		c.remove(element)

		return nil, ErrCacheExpired
	}

	c.order.MoveToFront(element)

	return item.entry, nil
}

// Set stores entry under key.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		element.Value = &memoryItem{key: key, entry: entry}
		c.order.MoveToFront(element)

		return nil
	}

	for c.order.Len() >= c.maxSize {
		c.remove(c.order.Back())
	}

	c.items[key] = c.order.PushFront(&memoryItem{key: key, entry: entry})

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		c.remove(element)
	}

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.items)

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return false
	}

	item, _ := element.Value.(*memoryItem)

	return !item.entry.Expired()
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Cleanup removes expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for element := c.order.Front(); element != nil; {
		next := element.Next()

		item, _ := element.Value.(*memoryItem)
		if item.entry.Expired() {
			c.remove(element)
		}

		element = next
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (c *MemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}

func (c *MemoryCache) remove(element *list.Element) {
	item, _ := element.Value.(*memoryItem)
	delete(c.items, item.key)
	c.order.Remove(element)
}

// CacheStats counts cache lookups.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// GetHitRate returns the fraction of lookups that hit.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CachingPolicy decides which responses are cached.
type CachingPolicy struct {
	CacheGET    bool
	CachePOST   bool
	CacheErrors bool
	// IncludePaths, when set, restricts caching to paths with these prefixes.
	IncludePaths []string
	// ExcludePaths are never cached.
	ExcludePaths []string
}

// DefaultCachingPolicy caches successful GET responses, except for the
// session endpoint whose content changes with every login.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET:     true,
		ExcludePaths: []string{"/session"},
	}
}

// ShouldCache reports whether a response may be cached.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	switch method {
	case http.MethodGet:
		if !p.CacheGET {
			return false
		}
	case http.MethodPost:
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	if !p.CacheErrors && (statusCode < 200 || statusCode >= 300) {
		return false
	}

	hasPrefix := func(prefix string) bool { return strings.HasPrefix(path, prefix) }

	if slices.ContainsFunc(p.ExcludePaths, hasPrefix) {
		return false
	}

	if len(p.IncludePaths) > 0 {
		return slices.ContainsFunc(p.IncludePaths, hasPrefix)
	}

	return true
}

// CacheManager puts a Cache behind a caching policy and counts hits.
type CacheManager struct {
	cache   Cache
	options *CacheOptions
	policy  *CachingPolicy

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewCacheManager creates a cache manager. A nil cache disables caching; nil
// options mean DefaultCacheOptions.
func NewCacheManager(cache Cache, options *CacheOptions) *CacheManager {
	if cache == nil {
		cache = NewDisabledCache()
	}

	if options == nil {
		options = DefaultCacheOptions()
	}

	return &CacheManager{
		cache:   cache,
		options: options,
		policy:  DefaultCachingPolicy(),
	}
}

// SetPolicy replaces the caching policy.
func (m *CacheManager) SetPolicy(policy *CachingPolicy) {
	m.policy = policy
}

// Policy returns the caching policy.
func (m *CacheManager) Policy() *CachingPolicy {
	return m.policy
}

// TTL returns the configured entry lifetime.
func (m *CacheManager) TTL() time.Duration {
	return m.options.TTL
}

// GetCacheKey builds the key of a request. Parameters are sorted so that the
// key does not depend on their order.
func (m *CacheManager) GetCacheKey(method, path string, params map[string]string) string {
	key := method + ":" + path
	if len(params) == 0 {
		return key
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+params[name])
	}

	return key + ":" + strings.Join(parts, "&")
}

// Get returns the cached body for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.misses.Add(1)

		return nil, err
	}

	m.hits.Add(1)

	return entry.Data, nil
}

// Set caches data under key for ttl.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag caches data and its ETag under key for ttl.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if !m.options.EnableETags {
		etag = ""
	}

	err := m.cache.Set(ctx, key, &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		ETag:      etag,
	})
	if err != nil {
		return err
	}

	m.sets.Add(1)

	return nil
}

// GetStats returns the lookup counters.
func (m *CacheManager) GetStats() *CacheStats {
	return &CacheStats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Sets:   m.sets.Load(),
	}
}

// hashKey maps an arbitrary cache key to a fixed-length hex digest usable by
// backends with restricted key alphabets.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}
