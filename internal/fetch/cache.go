package fetch

import (
	"sync"
	"time"

	"github.com/quarrylabs/quarry/internal/drill"
)

// Cache is an in-memory TTL-keyed store for fetched record sets.
//
// The TTL is fixed per instance at construction. Expired entries are treated
// as absent and evicted lazily on the Get that observes them; there is no
// background sweeper. Lookups never fail loudly: any anomaly degrades to a
// cache miss.
//
// Each logical consumer owns its own Cache; nothing here is shared or
// global. The mutex preserves the single-writer invariant when the owning
// consumer is used from multiple goroutines.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value    []drill.Record
	storedAt time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces the cache's time source. Tests use this to cross TTL
// boundaries without sleeping.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a cache whose entries live for ttl after each Set.
// A non-positive ttl makes every entry expire immediately.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored value for key, or ok=false if the key is absent or
// past its TTL. An expired entry is evicted by this call.
func (c *Cache) Get(key string) ([]drill.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(ent.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return ent.value, true
}

// Set stores value under key, restarting its TTL. Last write wins.
func (c *Cache) Set(key string, value []drill.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries currently stored, including entries
// that have expired but not yet been evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
