// Package cache holds short-lived responses of cacheable operations.
//
// A cacheable operation owns exactly one entry, whatever arguments it was
// called with. Lookups and fetches are not coordinated: two callers that miss
// at the same time will both fetch, and the last Set wins.
package cache

import (
	"sync"
	"time"

	"nhgate/internal/clock"
)

// DefaultTTL is how long a fetched value stays valid.
const DefaultTTL = 3 * time.Minute

// Entry is a cached value with its absolute expiry in epoch seconds.
type Entry[V any] struct {
	Key    string
	Value  V
	Expiry int64
}

// Valid reports whether the entry may still be served at now.
func (e Entry[V]) Valid(now time.Time) bool {
	return now.Unix() < e.Expiry
}

type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   clock.Clock
	entries map[string]Entry[V]
}

// New creates a cache whose entries live for ttl as measured by c.
func New[V any](ttl time.Duration, c clock.Clock) *Cache[V] {
	if c == nil {
		c = clock.System{}
	}

	return &Cache[V]{
		ttl:     ttl,
		clock:   c,
		entries: make(map[string]Entry[V]),
	}
}

// Get returns the value stored under key if it has not expired. Expired
// entries are dropped.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if !e.Valid(c.clock.Now()) {
		delete(c.entries, key)
		return zero, false
	}

	return e.Value, true
}

// Set replaces the entry under key with value and a fresh expiry.
func (c *Cache[V]) Set(key string, value V) Entry[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := Entry[V]{
		Key:    key,
		Value:  value,
		Expiry: c.clock.Now().Add(c.ttl).Unix(),
	}
	c.entries[key] = e

	return e
}

// Lookup returns the raw entry under key, valid or not.
func (c *Cache[V]) Lookup(key string) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V])
}

// GetOrFetch serves key from the cache, or calls fetch and stores its result.
// The returned bool is true on a cache hit. Failed fetches are not stored.
func (c *Cache[V]) GetOrFetch(key string, fetch func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err := fetch()
	if err != nil {
		var zero V
		return zero, false, err
	}

	c.Set(key, v)

	return v, false, nil
}
