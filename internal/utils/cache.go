package utils

import (
	"container/list"
	"sync"
)

// DefaultCacheSize bounds caches created with a non-positive size
const DefaultCacheSize = 1024

// cacheItem represents a cached item and the generation it was stored in
type cacheItem[K comparable, V any] struct {
	key        K
	value      V
	generation uint64
}

// Cache provides a bounded, generation-scoped cache. Entries beyond the
// capacity are evicted least-recently-used first; NewGeneration drops every
// entry stored before it was called.
type Cache[K comparable, V any] struct {
	mutex      sync.Mutex
	capacity   int
	generation uint64
	order      *list.List
	items      map[K]*list.Element
	stats      CacheStats
}

// NewCache creates a new generic cache holding at most capacity entries
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element),
	}
}

// Get retrieves an item from the current generation
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, exists := c.items[key]; exists {
		item := elem.Value.(*cacheItem[K, V])
		if item.generation == c.generation {
			c.order.MoveToFront(elem)
			c.stats.Hits++
			return item.value, true
		}
		c.removeElement(elem)
	}

	c.stats.Misses++
	var zero V
	return zero, false
}

// Set stores an item in the current generation. Storing an existing key
// replaces its value.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, exists := c.items[key]; exists {
		item := elem.Value.(*cacheItem[K, V])
		item.value = value
		item.generation = c.generation
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&cacheItem[K, V]{
		key:        key,
		value:      value,
		generation: c.generation,
	})

	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
		c.stats.Evictions++
	}
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// NewGeneration invalidates every entry stored so far. Stale entries are
// released eagerly so a long-lived process does not hold on to old source.
func (c *Cache[K, V]) NewGeneration() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.generation++
	c.order.Init()
	c.items = make(map[K]*list.Element)
}

// GetStats returns cache statistics
func (c *Cache[K, V]) GetStats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := c.stats
	stats.Size = len(c.items)
	stats.Capacity = c.capacity
	stats.Generation = c.generation
	return stats
}

func (c *Cache[K, V]) removeElement(elem *list.Element) {
	item := c.order.Remove(elem).(*cacheItem[K, V])
	delete(c.items, item.key)
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size       int    `json:"size"`
	Capacity   int    `json:"capacity"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
	Evictions  int64  `json:"evictions"`
	Generation uint64 `json:"generation"`
}
