// Package cache provides an in-memory TTL cache with LRU eviction, used to
// memoize DNS answers during a run so repeated chain walks do not re-query.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry represents a cached item with metadata.
type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	element   *list.Element
}

// TTLCache is an in-memory LRU cache with per-entry TTL.
type TTLCache[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry[V]
	lruList  *list.List
}

// New creates a cache with the specified capacity. When the cache reaches
// capacity, the least recently used item is evicted.
func New[V any](capacity int) *TTLCache[V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &TTLCache[V]{
		capacity: capacity,
		items:    make(map[string]*entry[V]),
		lruList:  list.New(),
	}
}

// Get retrieves a value from the cache. A hit marks the entry as recently used.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, exists := c.items[key]
	if !exists {
		return zero, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.deleteEntry(e)
		return zero, false
	}
	c.lruList.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value with a TTL. A ttl of 0 means the entry never expires.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if existing, exists := c.items[key]; exists {
		existing.value = value
		existing.expiresAt = expiresAt
		c.lruList.MoveToFront(existing.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictLRU()
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	e.element = c.lruList.PushFront(e)
	c.items[key] = e
}

// Delete removes a value from the cache.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, exists := c.items[key]; exists {
		c.deleteEntry(e)
	}
}

// Clear removes all values from the cache.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry[V])
	c.lruList.Init()
}

// Size returns the current number of items in the cache.
func (c *TTLCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// deleteEntry removes an entry. Caller holds c.mu.
func (c *TTLCache[V]) deleteEntry(e *entry[V]) {
	c.lruList.Remove(e.element)
	delete(c.items, e.key)
}

// evictLRU evicts the least recently used entry. Caller holds c.mu.
func (c *TTLCache[V]) evictLRU() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	c.deleteEntry(back.Value.(*entry[V]))
}
