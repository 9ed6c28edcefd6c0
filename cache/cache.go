// Package cache provides generic, thread-safe LRU caches with metrics.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Cache is a generic thread-safe LRU cache with built-in metrics.
// The validator uses it for repaired rule files keyed by content
// fingerprint and for simplified paths keyed by raw path.
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	elems    map[K]*list.Element
	order    *list.List // front = most recently used
	capacity int

	// Metrics (lock-free using atomics)
	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
	sets   atomic.Uint64
}

// entry is what each list element carries.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a new Cache with the specified capacity.
// When the cache is full, the least recently used item is evicted.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache[K, V]{
		elems:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get retrieves a value from the cache.
// Returns the value and true if found, zero value and false otherwise.
// Accessing an item moves it to the front of the LRU list.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	el, ok := c.elems[key]
	var value V
	if ok {
		c.order.MoveToFront(el)
		value = el.Value.(*entry[K, V]).value
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return value, false
	}

	c.hits.Add(1)
	return value, true
}

// Peek retrieves a value without refreshing its LRU position or
// touching the hit/miss counters.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if el, ok := c.elems[key]; ok {
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Set adds or updates a value in the cache.
// If the cache is at capacity, the least recently used item is evicted.
func (c *Cache[K, V]) Set(key K, value V) {
	c.sets.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.set(key, value)
}

// set stores one entry. Callers must hold mu.
func (c *Cache[K, V]) set(key K, value V) {
	if el, ok := c.elems[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}

	if len(c.elems) >= c.capacity {
		c.evictOldest()
	}

	c.elems[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// evictOldest removes the least recently used item.
// Callers must hold mu.
func (c *Cache[K, V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}

	delete(c.elems, oldest.Value.(*entry[K, V]).key)
	c.order.Remove(oldest)
	c.evicts.Add(1)
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. A compute error is returned to the caller and nothing is
// cached, so a later call retries. The computation runs under the cache
// lock; callers needing concurrent computes should front the cache with
// singleflight the way the rule repairer does.
func (c *Cache[K, V]) GetOrCompute(key K, fn func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the write lock
	if el, ok := c.elems[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, nil
	}

	value, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	c.set(key, value)
	c.sets.Add(1)
	return value, nil
}

// Delete removes an item from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.elems[key]; ok {
		delete(c.elems, key)
		c.order.Remove(el)
	}
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.elems)
}

// Clear removes all items from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elems = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}

// Keys returns all keys in the cache, most recently used first.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, len(c.elems))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[K, V]).key)
	}
	return keys
}

// Stats holds cache statistics.
type Stats struct {
	Size     int
	Capacity int
	Hits     uint64
	Misses   uint64
	Evicts   uint64
	Sets     uint64
	HitRate  float64
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	size := len(c.elems)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:     size,
		Capacity: c.capacity,
		Hits:     hits,
		Misses:   misses,
		Evicts:   c.evicts.Load(),
		Sets:     c.sets.Load(),
		HitRate:  hitRate,
	}
}
