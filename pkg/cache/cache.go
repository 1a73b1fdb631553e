// Package cache provides a thread-safe in-memory cache with TTL support.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	expiration time.Time
}

// Cache maps string keys to values that expire after a fixed TTL.
type Cache[V any] struct {
	entries map[string]entry[V]
	now     func() time.Time
	mu      sync.RWMutex
	ttl     time.Duration
}

// New creates a cache whose entries live for ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
		ttl:     ttl,
	}
}

// Get retrieves a value if it has not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiration) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value for the cache's TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

// Delete removes a key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune removes expired entries and returns how many were removed.
func (c *Cache[V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiration) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// RunCleanup prunes expired entries every interval until ctx is cancelled.
func (c *Cache[V]) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}
