package scratch

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// SeedPolicy decides what GetOrCreate does with seed fields on a cache hit.
type SeedPolicy int

const (
	// SeedIgnoreOnHit returns the cached instance unchanged.
	SeedIgnoreOnHit SeedPolicy = iota
	// SeedFillUnknown adds the seed fields the cached instance does not know
	// yet, as long as it has not been hydrated. Known fields are never
	// overwritten.
	SeedFillUnknown
)

// String returns the policy name.
func (p SeedPolicy) String() string {
	if p == SeedFillUnknown {
		return "fill-unknown"
	}

	return "ignore-on-hit"
}

// ParseSeedPolicy parses a policy name as returned by SeedPolicy.String.
func ParseSeedPolicy(name string) (SeedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ignore-on-hit":
		return SeedIgnoreOnHit, nil
	case "fill-unknown":
		return SeedFillUnknown, nil
	default:
		return SeedIgnoreOnHit, fmt.Errorf("%w: %q", ErrInvalidSeedPolicy, name)
	}
}

// Factory constructs the cached value for a key seen for the first time.
type Factory[K comparable, V any] interface {
	Create(key K, seed Record) V
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc[K comparable, V any] func(key K, seed Record) V

// Create calls f(key, seed).
func (f FactoryFunc[K, V]) Create(key K, seed Record) V {
	return f(key, seed)
}

// Seedable is implemented by values that accept seed fields after creation.
type Seedable interface {
	SeedUnknown(seed Record) int
}

// IdentityOption configures an IdentityCache.
type IdentityOption[K comparable] func(*identityOptions[K])

type identityOptions[K comparable] struct {
	normalize func(K) K
	policy    SeedPolicy
}

// WithKeyNormalizer sets the function mapping keys to their canonical form.
func WithKeyNormalizer[K comparable](normalize func(K) K) IdentityOption[K] {
	return func(o *identityOptions[K]) {
		o.normalize = normalize
	}
}

// WithSeedPolicy sets the cache-hit seed policy.
func WithSeedPolicy[K comparable](policy SeedPolicy) IdentityOption[K] {
	return func(o *identityOptions[K]) {
		o.policy = policy
	}
}

// IdentityCache guarantees a single instance per normalized key for its
// lifetime. Entries are created on first reference and never evicted.
//
// The factory runs with the cache lock held and must not call back into the
// cache.
type IdentityCache[K comparable, V any] struct {
	factory   Factory[K, V]
	normalize func(K) K
	policy    SeedPolicy

	mu      sync.Mutex
	entries map[K]V
}

// NewIdentityCache creates an empty cache constructing values with factory.
func NewIdentityCache[K comparable, V any](factory Factory[K, V], opts ...IdentityOption[K]) *IdentityCache[K, V] {
	options := identityOptions[K]{policy: SeedIgnoreOnHit}
	for _, opt := range opts {
		opt(&options)
	}

	return &IdentityCache[K, V]{
		factory:   factory,
		normalize: options.normalize,
		policy:    options.policy,
		entries:   make(map[K]V),
	}
}

// GetOrCreate returns the instance for key, creating it from seed when the
// normalized key has not been seen. On a hit, seed is handled according to
// the cache's SeedPolicy.
func (c *IdentityCache[K, V]) GetOrCreate(key K, seed Record) V {
	key = c.key(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.entries[key]; ok {
		if c.policy == SeedFillUnknown && seed.Len() > 0 {
			if seedable, ok := any(value).(Seedable); ok {
				seedable.SeedUnknown(seed)
			}
		}

		return value
	}

	value := c.factory.Create(key, seed)
	c.entries[key] = value

	return value
}

// Lookup returns the cached instance for key without creating one.
func (c *IdentityCache[K, V]) Lookup(key K) (V, bool) {
	key = c.key(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.entries[key]

	return value, ok
}

// Len returns the number of cached instances.
func (c *IdentityCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Policy returns the cache-hit seed policy.
func (c *IdentityCache[K, V]) Policy() SeedPolicy {
	return c.policy
}

func (c *IdentityCache[K, V]) key(key K) K {
	if c.normalize == nil {
		return key
	}

	return c.normalize(key)
}

// NormalizeUsername returns the canonical cache key of a username: trimmed
// and case folded.
func NormalizeUsername(username string) string {
	// Casers keep state and are not safe for concurrent use.
	return cases.Fold().String(strings.TrimSpace(username))
}

// ParseProjectID parses a textual project ID.
func ParseProjectID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProjectID, text)
	}

	return id, nil
}
