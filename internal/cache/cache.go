// Package cache is a small read-through memo with per-entry expiry.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// sweepEvery is the number of writes between sweeps of expired entries.
const sweepEvery = 100

// Cache maps keys to values that expire after a fixed duration.
type Cache[V any] struct {
	entries sync.Map
	writes  atomic.Uint32
	ttl     time.Duration

	now func() time.Time
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// New returns a cache whose entries live for ttl. A non-positive ttl means
// ten minutes.
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache[V]{ttl: ttl, now: time.Now}
}

// Put stores value under key.
func (c *Cache[V]) Put(key string, value V) {
	c.entries.Store(key, entry[V]{value: value, expires: c.now().Add(c.ttl)})

	if c.writes.Add(1) >= sweepEvery {
		c.writes.Store(0)
		c.Sweep()
	}
}

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	obj, ok := c.entries.Load(key)
	if !ok {
		return zero, false
	}
	e := obj.(entry[V])
	if c.now().After(e.expires) {
		c.entries.Delete(key)
		return zero, false
	}
	return e.value, true
}

// Sweep drops every expired entry.
func (c *Cache[V]) Sweep() {
	now := c.now()
	c.entries.Range(func(key, value any) bool {
		if now.After(value.(entry[V]).expires) {
			c.entries.Delete(key)
		}
		return true
	})
}
