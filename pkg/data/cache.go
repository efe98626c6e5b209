package data

import (
	"sync"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// DefaultCacheCapacity bounds the number of cached bar series.
const DefaultCacheCapacity = 50

// LRUCache is a bounded bar cache with insertion-order eviction: when the
// capacity is exceeded the oldest-inserted key is removed, regardless of how
// recently it was read. Access-order bookkeeping is deliberately avoided to
// keep the policy simple and testable.
type LRUCache struct {
	capacity int
	entries  map[string][]types.Bar
	order    []string
	mu       sync.RWMutex
}

// NewLRUCache creates a cache bounded at capacity entries.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &LRUCache{
		capacity: capacity,
		entries:  make(map[string][]types.Bar),
	}
}

// Get retrieves a copy of the cached series, if present.
func (c *LRUCache) Get(key string) ([]types.Bar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bars, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	out := make([]types.Bar, len(bars))
	copy(out, bars)
	return out, true
}

// Set stores a copy of bars under key, evicting the oldest-inserted entry
// when the cache is full.
func (c *LRUCache) Set(key string, bars []types.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}

	stored := make([]types.Bar, len(bars))
	copy(stored, bars)
	c.entries[key] = stored
}

// Len returns the number of cached series.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all cached series.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]types.Bar)
	c.order = nil
}
