package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantlab/backtest-engine/pkg/types"
)

func trade(pnl float64) types.Trade {
	return types.Trade{PnL: pnl, PnLPercent: pnl / 100}
}

func equityCurve(values ...float64) []types.EquityPoint {
	points := make([]types.EquityPoint, len(values))
	for i, v := range values {
		points[i] = types.EquityPoint{Timestamp: time.UnixMilli(int64(i) * 60_000), Equity: v}
	}
	return points
}

// TestComputeMetrics_BasicLedger checks the headline figures for a small
// mixed ledger.
func TestComputeMetrics_BasicLedger(t *testing.T) {
	trades := []types.Trade{trade(100), trade(-50), trade(30)}

	m := ComputeMetrics(trades, nil, 10000)

	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 66.666, m.WinRate, 0.01)
	assert.InDelta(t, 80.0, m.TotalPnL, 1e-9)
	assert.InDelta(t, 65.0, m.AvgWin, 1e-9)
	assert.InDelta(t, -50.0, m.AvgLoss, 1e-9)
	assert.InDelta(t, 100.0, m.LargestWin, 1e-9)
	assert.InDelta(t, -50.0, m.LargestLoss, 1e-9)
	assert.InDelta(t, 2.6, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 10080.0, m.FinalCapital, 1e-9)
	assert.InDelta(t, 0.8, m.TotalReturnPct, 1e-9)
}

// TestComputeMetrics_EmptyLedger checks degenerate inputs resolve to zeros,
// never NaN.
func TestComputeMetrics_EmptyLedger(t *testing.T) {
	m := ComputeMetrics(nil, nil, 10000)

	assert.Equal(t, 0, m.TotalTrades)
	assert.Zero(t, m.WinRate)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.SharpeRatio)
	assert.Equal(t, 10000.0, m.FinalCapital)
	assert.False(t, math.IsNaN(m.TotalReturnPct))
}

// TestComputeMetrics_ProfitFactorNoLosses checks the all-winners case stays
// at 0 rather than dividing by zero.
func TestComputeMetrics_ProfitFactorNoLosses(t *testing.T) {
	m := ComputeMetrics([]types.Trade{trade(10), trade(20)}, nil, 10000)
	assert.Zero(t, m.ProfitFactor)
}

// TestSharpeRatio_KnownValue checks the annualization against a hand
// computed case.
func TestSharpeRatio_KnownValue(t *testing.T) {
	// mean 0.015, population std 0.005.
	got := SharpeRatio([]float64{0.02, 0.01})
	assert.InDelta(t, 3*math.Sqrt(252), got, 1e-9)
}

// TestSharpeRatio_Degenerate checks zero variance and short inputs map to
// 0.
func TestSharpeRatio_Degenerate(t *testing.T) {
	assert.Zero(t, SharpeRatio(nil))
	assert.Zero(t, SharpeRatio([]float64{0.01}))
	assert.Zero(t, SharpeRatio([]float64{0.01, 0.01, 0.01}))
}

// TestMeanStdDev checks the population standard deviation.
func TestMeanStdDev(t *testing.T) {
	mean, std := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, std, 1e-9)
}

// TestMaxDrawdown_PeakStartsAtInitialCapital checks a curve that only
// declines reports its full drawdown.
func TestMaxDrawdown_PeakStartsAtInitialCapital(t *testing.T) {
	m := ComputeMetrics(nil, equityCurve(9000, 8000, 8500), 10000)
	assert.InDelta(t, 2000.0, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 20.0, m.MaxDrawdownPct, 1e-9)
}

// TestMaxDrawdown_TracksRunningPeak checks the drawdown is measured from
// the highest peak seen so far.
func TestMaxDrawdown_TracksRunningPeak(t *testing.T) {
	m := ComputeMetrics(nil, equityCurve(10500, 12000, 10000, 11000), 10000)
	assert.InDelta(t, 2000.0, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 2000.0/12000*100, m.MaxDrawdownPct, 1e-9)
}
