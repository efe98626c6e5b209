package data

import (
	"context"
	"fmt"
	"time"

	"github.com/quantlab/backtest-engine/internal/errors"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Manager is the historical data front door: it fetches raw bars from a
// Provider, validates and orders them, filters to the requested range and
// caches the result keyed by the full request.
type Manager struct {
	provider  Provider
	cache     Cache
	validator *Validator
	log       *logger.Logger
}

// NewManager creates a manager over the given provider with a bounded LRU
// cache.
func NewManager(provider Provider, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.New("data")
	}
	return &Manager{
		provider:  provider,
		cache:     NewLRUCache(DefaultCacheCapacity),
		validator: NewValidator(log),
		log:       log,
	}
}

// WithCache replaces the manager's cache. Intended for tests and for callers
// that need a different capacity.
func (m *Manager) WithCache(cache Cache) *Manager {
	m.cache = cache
	return m
}

// FetchHistoricalData returns validated, date-filtered, time-ascending bars
// for the request. Results are cached by the (symbol, timeframe, start, end)
// tuple; limit truncates after filtering and does not participate in the
// cache key, so a narrower limit on a cached range is served from memory.
func (m *Manager) FetchHistoricalData(ctx context.Context, symbol, timeframe string, start, end time.Time, limit int) ([]types.Bar, error) {
	key := cacheKey(symbol, timeframe, start, end)

	bars, ok := m.cache.Get(key)
	if !ok {
		raw, err := m.provider.Load(ctx, symbol, timeframe)
		if err != nil {
			return nil, errors.NewDataError("data", "fetch", err)
		}

		bars = FilterByDateRange(m.validator.Validate(raw), start, end)
		m.cache.Set(key, bars)
	}

	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// ValidateData filters malformed bars, logging each drop. See
// Validator.Validate.
func (m *Manager) ValidateData(bars []types.Bar) []types.Bar {
	return m.validator.Validate(bars)
}

// FilterOutliers drops bars with a close-to-close jump beyond maxJumpPct
// percent.
func (m *Manager) FilterOutliers(bars []types.Bar, maxJumpPct float64) []types.Bar {
	return m.validator.FilterOutliers(bars, maxJumpPct)
}

// ResampleData aggregates bars into the target timeframe.
func (m *Manager) ResampleData(bars []types.Bar, targetTimeframe string) ([]types.Bar, error) {
	return Resample(bars, targetTimeframe)
}

// FindDataGaps reports holes larger than 1.5x the expected interval.
func (m *Manager) FindDataGaps(bars []types.Bar, expectedInterval time.Duration) []Gap {
	return FindGaps(bars, expectedInterval)
}

// CacheSize returns the number of cached request entries.
func (m *Manager) CacheSize() int {
	return m.cache.Len()
}

func cacheKey(symbol, timeframe string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%d|%d", symbol, timeframe, start.UnixMilli(), end.UnixMilli())
}
