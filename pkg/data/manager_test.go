package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// stubProvider serves a fixed bar slice and counts loads.
type stubProvider struct {
	bars  []types.Bar
	loads int
}

func (p *stubProvider) Load(ctx context.Context, symbol, timeframe string) ([]types.Bar, error) {
	p.loads++
	return p.bars, nil
}

func (p *stubProvider) Name() string { return "stub" }

// TestManager_FetchServesFromCache checks that an identical request does not
// hit the provider twice.
func TestManager_FetchServesFromCache(t *testing.T) {
	provider := &stubProvider{bars: minuteBars(10, 0)}
	manager := NewManager(provider, nil)

	ctx := context.Background()
	first, err := manager.FetchHistoricalData(ctx, "BTCUSDT", "1m", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	second, err := manager.FetchHistoricalData(ctx, "BTCUSDT", "1m", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.loads)
	assert.Equal(t, 1, manager.CacheSize())
}

// TestManager_CacheKeyIncludesRange checks that a different date range is a
// distinct cache entry.
func TestManager_CacheKeyIncludesRange(t *testing.T) {
	provider := &stubProvider{bars: minuteBars(10, 0)}
	manager := NewManager(provider, nil)

	ctx := context.Background()
	_, err := manager.FetchHistoricalData(ctx, "BTCUSDT", "1m", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	narrowed, err := manager.FetchHistoricalData(ctx, "BTCUSDT", "1m",
		time.UnixMilli(120_000), time.UnixMilli(300_000), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.loads)
	assert.Equal(t, 2, manager.CacheSize())
	assert.Len(t, narrowed, 4)
}

// TestManager_LimitTruncatesTail checks that limit keeps the most recent
// bars and is not part of the cache key.
func TestManager_LimitTruncatesTail(t *testing.T) {
	provider := &stubProvider{bars: minuteBars(10, 0)}
	manager := NewManager(provider, nil)

	ctx := context.Background()
	_, err := manager.FetchHistoricalData(ctx, "BTCUSDT", "1m", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)

	limited, err := manager.FetchHistoricalData(ctx, "BTCUSDT", "1m", time.Time{}, time.Time{}, 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, int64(9*60_000), limited[2].TimestampMs())
	assert.Equal(t, 1, provider.loads)
}

// TestManager_ValidatesProviderData checks that malformed provider bars are
// filtered before caching.
func TestManager_ValidatesProviderData(t *testing.T) {
	bars := minuteBars(3, 0)
	bars[1].High = bars[1].Low - 1
	provider := &stubProvider{bars: bars}
	manager := NewManager(provider, nil)

	out, err := manager.FetchHistoricalData(context.Background(), "BTCUSDT", "1m", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
