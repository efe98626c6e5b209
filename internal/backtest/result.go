package backtest

import (
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Result is the immutable outcome of a single backtest run. It is produced
// once and handed read-only to the Monte Carlo and optimization engines and
// to reporting.
type Result struct {
	Trades     []types.Trade
	Equity     []types.EquityPoint
	Config     Config
	Metrics    Metrics
	Warnings   []string
	Strategy   string
	Parameters map[string]float64
}

// Metrics are the per-run performance figures. Degenerate inputs (no trades,
// zero variance, zero peak) resolve to 0, never NaN or Inf.
type Metrics struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64 // percent
	TotalPnL       float64
	AvgWin         float64
	AvgLoss        float64
	LargestWin     float64
	LargestLoss    float64
	ProfitFactor   float64
	SharpeRatio    float64
	MaxDrawdown    float64 // absolute
	MaxDrawdownPct float64 // percent of peak
	FinalCapital   float64
	TotalReturnPct float64
}
