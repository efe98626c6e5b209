package data

import (
	"context"
	"time"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// Provider loads raw historical bars for a symbol and timeframe from some
// backing source (CSV file tree, test fixture, ...). Providers return bars
// as stored; the Manager owns validation, ordering and caching.
type Provider interface {
	// Load loads all available bars for the symbol/timeframe pair.
	Load(ctx context.Context, symbol, timeframe string) ([]types.Bar, error)

	// Name returns the name of the provider for logging.
	Name() string
}

// Cache stores validated bar series keyed by request.
type Cache interface {
	Get(key string) ([]types.Bar, bool)
	Set(key string, bars []types.Bar)
	Len() int
	Clear()
}

// Gap describes a hole between two consecutive bars.
type Gap struct {
	Start       time.Time
	End         time.Time
	MissingBars int
}
