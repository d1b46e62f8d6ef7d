package scratch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
)

// NATSKVConfig configures the NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server. Ignored when Conn is set.
	URL string
	// Conn is an existing connection to reuse. The cache does not close it.
	Conn *nats.Conn
	// Bucket is the key-value bucket name.
	Bucket string
	// TTL is the bucket-wide entry lifetime.
	TTL time.Duration
	// Timeout bounds bucket setup.
	Timeout time.Duration
}

// NATSKVCache stores cache entries in a JetStream key-value bucket. Keys are
// hashed since bucket keys allow a restricted alphabet.
type NATSKVCache struct {
	conn    *nats.Conn
	ownConn bool
	kv      jetstream.KeyValue
}

// NewNATSKVCache connects to NATS and opens (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	ttl := config.TTL
	if ttl == 0 {
		ttl = constants.DefaultCacheTTL
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = constants.ShortHTTPTimeout
	}

	conn := config.Conn
	ownConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("scratch-client"), nats.Timeout(timeout))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
		}

		ownConn = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		closeOwned(conn, ownConn)

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "scratch API response cache",
		TTL:         ttl,
	})
	if err != nil {
		closeOwned(conn, ownConn)

		return nil, fmt.Errorf("failed to open key-value bucket %s: %w", bucket, err)
	}

	return &NATSKVCache{conn: conn, ownConn: ownConn, kv: kv}, nil
}

func closeOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

// Get returns the entry for key.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	value, err := c.kv.Get(ctx, hashKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, ErrCacheKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cache key: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(value.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	if entry.Expired() {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheExpired
	}

	return &entry, nil
}

// Set stores entry under key.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = c.kv.Put(ctx, hashKey(key), data)
	if err != nil {
		return fmt.Errorf("failed to write cache key: %w", err)
	}

	return nil
}

// Delete removes key.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, hashKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}

	return nil
}

// Clear purges every key of the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		err = c.kv.Purge(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to purge cache key: %w", err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the connection when the cache opened it.
func (c *NATSKVCache) Close() {
	closeOwned(c.conn, c.ownConn)
}
