package scratch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
)

// RedisCacheConfig configures the Redis cache.
type RedisCacheConfig struct {
	// Addr is the host:port of the server. Ignored when Client is set.
	Addr     string
	Password string
	DB       int
	// Client is an existing client to reuse. The cache does not close it.
	Client redis.UniversalClient
	// Prefix namespaces the cache keys.
	Prefix string
}

// RedisCache stores cache entries in Redis with native expiry.
type RedisCache struct {
	client    redis.UniversalClient
	ownClient bool
	prefix    string
}

// NewRedisCache creates a Redis cache. The connection is established lazily
// by the first command.
func NewRedisCache(config *RedisCacheConfig) (*RedisCache, error) {
	if config == nil {
		return nil, ErrRedisConfigRequired
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}

	client := config.Client
	ownClient := false

	if client == nil {
		if config.Addr == "" {
			return nil, ErrRedisConfigRequired
		}

		client = redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
		ownClient = true
	}

	return &RedisCache{client: client, ownClient: ownClient, prefix: prefix}, nil
}

func (c *RedisCache) key(key string) string {
	return c.prefix + hashKey(key)
}

// Get returns the entry for key.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cache key: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(data, &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	if entry.Expired() {
		return nil, ErrCacheExpired
	}

	return &entry, nil
}

// Set stores entry under key, expiring with the entry.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			return c.Delete(ctx, key)
		}
	}

	err = c.client.Set(ctx, c.key(key), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to write cache key: %w", err)
	}

	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.key(key)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}

	return nil
}

// Clear removes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", constants.RedisScanCount).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}

	err := iter.Err()
	if err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	count, err := c.client.Exists(ctx, c.key(key)).Result()

	return err == nil && count > 0
}

// Close closes the client when the cache created it.
func (c *RedisCache) Close() error {
	if !c.ownClient {
		return nil
	}

	return c.client.Close()
}
