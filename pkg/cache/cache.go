// Package cache provides a bounded, expiring read-through cache.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/yi-nology/showcase/pkg/metrics"
)

// Cache holds at most size entries for ttl each. Concurrent loads of the
// same key are collapsed into one.
type Cache[K comparable, V any] struct {
	entries *expirable.LRU[K, V]
	group   singleflight.Group

	// generation advances on every Invalidate and Purge. A load only stores
	// its value when no invalidation happened while it ran.
	mu         sync.Mutex
	generation uint64
}

func New[K comparable, V any](size int, ttl time.Duration) *Cache[K, V] {
	if size <= 0 {
		size = 256
	}
	return &Cache[K, V]{
		entries: expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// GetOrLoad returns the cached value for key or stores the result of load.
// A value loaded while any key was invalidated is returned but not stored.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.entries.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	gen := c.currentGeneration()
	v, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		if c.generation == gen {
			c.entries.Add(key, v)
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate drops key and any load of it still in flight.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	c.generation++
	c.entries.Remove(key)
	c.mu.Unlock()
	c.group.Forget(fmt.Sprint(key))
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	c.generation++
	c.entries.Purge()
	c.mu.Unlock()
}

func (c *Cache[K, V]) Len() int { return c.entries.Len() }

func (c *Cache[K, V]) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
