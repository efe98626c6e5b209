package strategy

import (
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Strategy is a parameterized per-bar trading strategy. Implementations keep
// their own lookback state; Clone must return a fresh instance carrying the
// same parameter values with all state cleared, so each backtest run is
// independent.
type Strategy interface {
	// Name returns the strategy name.
	Name() string

	// WarmupBars is the number of leading bars during which entries are
	// suppressed while lookback indicators stabilize.
	WarmupBars() int

	// Params returns the strategy's tunable parameters. The optimizer
	// mutates values through this set between runs.
	Params() *ParamSet

	// OnBar is invoked exactly once per bar, in time order, synchronously.
	OnBar(ctx Context, bar types.Bar) error

	// Clone returns an independent copy with cleared run state.
	Clone() Strategy
}

// Context is the strategy's view of the run, provided by the runtime on each
// OnBar call.
type Context interface {
	// History returns the bar sequence up to and including the current bar.
	History() []types.Bar

	// Position returns the current position snapshot.
	Position() types.Position

	// Buy opens a long position. A non-positive qty lets the runtime size
	// the position from its configured sizing policy. A no-op while a
	// position is already open.
	Buy(qty float64, opts ...OrderOption)

	// Sell opens a short position. Same sizing and no-op semantics as Buy.
	Sell(qty float64, opts ...OrderOption)

	// ClosePosition closes the open position at the current close price.
	// A no-op when no position is open.
	ClosePosition(reason types.CloseReason)

	// Indicators returns optional read-only indicator snapshots supplied by
	// external collaborators. Fields may be nil.
	Indicators() *Indicators
}

// Indicators carries optional externally computed snapshots. The runtime
// treats these as opaque inputs.
type Indicators struct {
	VWAP          *float64
	VolumeProfile interface{}
	OrderFlow     interface{}
}

// OrderOption configures an entry order.
type OrderOption func(*OrderParams)

// OrderParams holds optional entry parameters.
type OrderParams struct {
	StopLoss   float64
	TakeProfit float64
}

// WithStopLoss attaches a stop-loss price level to the entry.
func WithStopLoss(price float64) OrderOption {
	return func(p *OrderParams) { p.StopLoss = price }
}

// WithTakeProfit attaches a take-profit price level to the entry.
func WithTakeProfit(price float64) OrderOption {
	return func(p *OrderParams) { p.TakeProfit = price }
}
