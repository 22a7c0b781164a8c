package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/phylomovie/phylomovie/pkg/observability"
)

// DefaultLRUCapacity is the default number of layouts held in memory.
const DefaultLRUCapacity = 64

// LRU is a bounded in-memory cache with least-recently-used eviction.
// It holds decoded values (laid-out trees, layer data) on the playback hot
// path, where re-decoding bytes from the backing cache would be wasteful.
//
// LRU is safe for concurrent use.
type LRU struct {
	capacity int
	keyType  string

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

type lruEntry struct {
	key   string
	value any
}

// NewLRU creates a bounded LRU cache. A capacity <= 0 uses
// DefaultLRUCapacity. keyType labels cache hook events.
func NewLRU(capacity int, keyType string) *LRU {
	if capacity <= 0 {
		capacity = DefaultLRUCapacity
	}
	return &LRU{
		capacity: capacity,
		keyType:  keyType,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a value and marks it most-recently-used.
func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		observability.Cache().OnCacheMiss(context.Background(), c.keyType)
		return nil, false
	}
	c.order.MoveToFront(elem)
	observability.Cache().OnCacheHit(context.Background(), c.keyType)
	return elem.Value.(*lruEntry).value, true
}

// Put stores a value, evicting the least-recently-used entry when over
// capacity. Storing an existing key refreshes its recency.
func (c *LRU) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruEntry).value = value
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&lruEntry{key: key, value: value})
	c.entries[key] = elem
	observability.Cache().OnCacheSet(context.Background(), c.keyType, 1)

	if c.order.Len() > c.capacity {
		c.evictOldestLocked()
	}
}

// Remove deletes a single key. Removing a missing key is a no-op.
func (c *LRU) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
}

// Clear drops every entry. Used when a layout facet changes and all cached
// geometry becomes invalid at once.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of entries.
func (c *LRU) Capacity() int {
	return c.capacity
}

func (c *LRU) evictOldestLocked() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*lruEntry)
	c.order.Remove(elem)
	delete(c.entries, entry.key)
	observability.Cache().OnCacheEvict(context.Background(), c.keyType)
}
