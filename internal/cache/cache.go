// Package cache provides a small in-memory, keyed cache whose misses are
// filled by a caller-supplied fetch function.
//
// Concurrent misses for the same key share one fetch. Failed fetches are
// never stored, so the next lookup tries again.
package cache

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache maps string keys to values of type T. The zero value is not usable;
// construct one with New.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]T

	// gen and epoch are bumped by Invalidate and Clear so that a fetch
	// started before the invalidation does not store its result.
	gen   map[string]uint64
	epoch uint64

	group singleflight.Group
}

// New returns an empty cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]T),
		gen:     make(map[string]uint64),
	}
}

// Get returns the cached value for key, if any.
func (c *Cache[T]) Get(key string) (T, bool) {
	key = normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Has reports whether key has a cached value.
func (c *Cache[T]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores v under key.
func (c *Cache[T]) Set(key string, v T) {
	key = normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// GetOrFetch returns the cached value for key, calling fetch on a miss and
// storing its result on success.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	key = normalizeKey(key)

	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	gen, epoch := c.gen[key], c.epoch
	c.mu.Unlock()

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		if c.gen[key] == gen && c.epoch == epoch {
			c.entries[key] = v
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Invalidate removes a single cached entry.
func (c *Cache[T]) Invalidate(key string) {
	key = normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gen[key]++
}

// Clear removes all cached entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[string]T)
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	return key
}
