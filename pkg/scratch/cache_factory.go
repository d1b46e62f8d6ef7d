package scratch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeRedis represents Redis cache.
	CacheTypeRedis CacheType = "redis"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrRedisConfigRequired  = errors.New("Redis configuration required for Redis cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrCacheDisabled        = errors.New("cache disabled")
)

// CacheConfig configures cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// Memory configures the memory backend. With a nats or redis Type it
	// adds a process-local tier in front of the shared one.
	Memory *MemoryCacheConfig

	// NATS KV cache configuration
	NATS *NATSKVConfig

	// Redis cache configuration
	Redis *RedisCacheConfig

	// Common options applied to any backend. If nil, DefaultCacheOptions() is used.
	Options *CacheOptions
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int

	// CleanupInterval is the interval for cleaning up expired entries
	CleanupInterval string // Duration string like "1m", "5s"
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize:         constants.DefaultCacheSize,
			CleanupInterval: "1m",
		},
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration. A nats or
// redis backend is fronted by a memory tier when config.Memory is set.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		return NewMemoryCacheFromConfig(config.Memory)

	case CacheTypeNATS, CacheTypeRedis:
		shared, err := newSharedCache(config)
		if err != nil {
			return nil, err
		}

		if config.Memory == nil {
			return shared, nil
		}

		local, err := NewMemoryCacheFromConfig(config.Memory)
		if err != nil {
			_ = CloseCache(shared)

			return nil, err
		}

		return NewTieredCache(local, shared), nil

	case CacheTypeNone:
		return NewDisabledCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

func newSharedCache(config *CacheConfig) (Cache, error) {
	if config.Type == CacheTypeNATS {
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)
	}

	if config.Redis == nil {
		return nil, ErrRedisConfigRequired
	}

	return NewRedisCache(config.Redis)
}

// NewMemoryCacheFromConfig creates a memory cache from configuration. A valid
// CleanupInterval starts a background sweep that lives as long as the process.
func NewMemoryCacheFromConfig(config *MemoryCacheConfig) (Cache, error) {
	if config == nil {
		config = &MemoryCacheConfig{
			MaxSize:         constants.DefaultCacheSize,
			CleanupInterval: "1m",
		}
	}

	cache := NewMemoryCache(config.MaxSize)

	if config.CleanupInterval != "" {
		interval, err := time.ParseDuration(config.CleanupInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid cleanup interval %q: %w", config.CleanupInterval, err)
		}

		cache.StartCleanup(context.Background(), interval)
	}

	return cache, nil
}

// DisabledCache stores nothing. Every lookup misses with ErrCacheDisabled.
type DisabledCache struct{}

// NewDisabledCache returns a cache that stores nothing.
func NewDisabledCache() DisabledCache {
	return DisabledCache{}
}

func (DisabledCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

func (DisabledCache) Set(context.Context, string, *CacheEntry) error { return nil }

func (DisabledCache) Delete(context.Context, string) error { return nil }

func (DisabledCache) Clear(context.Context) error { return nil }

func (DisabledCache) Has(context.Context, string) bool { return false }

// TieredCache answers from a process-local cache and falls back to a shared
// one. Entries found only in the shared tier are copied into the local tier.
// Writes go to both tiers.
type TieredCache struct {
	local  Cache
	shared Cache
}

// NewTieredCache layers local in front of shared.
func NewTieredCache(local, shared Cache) *TieredCache {
	return &TieredCache{local: local, shared: shared}
}

// Get returns the local entry if present, otherwise the shared one.
func (t *TieredCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := t.local.Get(ctx, key)
	if err == nil {
		return entry, nil
	}

	entry, err = t.shared.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	_ = t.local.Set(ctx, key, entry)

	return entry, nil
}

// Set stores entry in both tiers. The local copy is kept even when the
// shared write fails.
func (t *TieredCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return errors.Join(t.local.Set(ctx, key, entry), t.shared.Set(ctx, key, entry))
}

func (t *TieredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(t.local.Delete(ctx, key), t.shared.Delete(ctx, key))
}

func (t *TieredCache) Clear(ctx context.Context) error {
	return errors.Join(t.local.Clear(ctx), t.shared.Clear(ctx))
}

func (t *TieredCache) Has(ctx context.Context, key string) bool {
	return t.local.Has(ctx, key) || t.shared.Has(ctx, key)
}

// Shared returns the shared tier.
func (t *TieredCache) Shared() Cache {
	return t.shared
}

// Close releases the shared tier's connection.
func (t *TieredCache) Close() error {
	return CloseCache(t.shared)
}

// CloseCache closes cache backends that hold a connection. Others are left
// alone.
func CloseCache(cache Cache) error {
	switch closer := cache.(type) {
	case interface{ Close() error }:
		return closer.Close()
	case interface{ Close() }:
		closer.Close()
	}

	return nil
}
