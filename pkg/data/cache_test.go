package data

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// TestLRUCache_EvictsOldestInserted checks that eviction follows insertion
// order, ignoring reads.
func TestLRUCache_EvictsOldestInserted(t *testing.T) {
	cache := NewLRUCache(2)
	cache.Set("a", minuteBars(1, 0))
	cache.Set("b", minuteBars(1, 0))

	// A read of "a" must not protect it from eviction.
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Set("c", minuteBars(1, 0))

	_, ok = cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

// TestLRUCache_OverwriteDoesNotEvict checks that re-setting an existing key
// neither grows the cache nor displaces another entry.
func TestLRUCache_OverwriteDoesNotEvict(t *testing.T) {
	cache := NewLRUCache(2)
	cache.Set("a", minuteBars(1, 0))
	cache.Set("b", minuteBars(1, 0))
	cache.Set("a", minuteBars(2, 0))

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Len(t, got, 2)
	_, ok = cache.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

// TestLRUCache_CopiesOnGetAndSet checks that callers cannot mutate cached
// data through returned or stored slices.
func TestLRUCache_CopiesOnGetAndSet(t *testing.T) {
	cache := NewLRUCache(2)
	original := minuteBars(1, 0)
	cache.Set("a", original)

	original[0].Close = 999

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 100.0, got[0].Close)

	got[0].Close = 888
	again, _ := cache.Get("a")
	assert.Equal(t, 100.0, again[0].Close)
}

func TestLRUCache_Capacity(t *testing.T) {
	cache := NewLRUCache(DefaultCacheCapacity)
	for i := 0; i < DefaultCacheCapacity+10; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), []types.Bar{})
	}
	assert.Equal(t, DefaultCacheCapacity, cache.Len())
}

func TestLRUCache_Clear(t *testing.T) {
	cache := NewLRUCache(2)
	cache.Set("a", minuteBars(1, 0))
	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}
