package backtest

import (
	"math"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// tradingDaysPerYear annualizes the per-trade Sharpe ratio.
const tradingDaysPerYear = 252

// ComputeMetrics derives performance metrics from a completed trade ledger
// and equity curve. An empty ledger yields zero metrics with FinalCapital
// equal to the initial capital.
func ComputeMetrics(trades []types.Trade, equity []types.EquityPoint, initialCapital float64) Metrics {
	m := Metrics{FinalCapital: initialCapital}

	for _, t := range trades {
		m.TotalPnL += t.PnL
	}
	m.FinalCapital = initialCapital + m.TotalPnL
	if initialCapital > 0 {
		m.TotalReturnPct = m.TotalPnL / initialCapital * 100
	}

	m.MaxDrawdown, m.MaxDrawdownPct = maxDrawdown(equity, initialCapital)

	if len(trades) == 0 {
		return m
	}

	var grossProfit, grossLoss float64
	for _, t := range trades {
		m.TotalTrades++
		if t.PnL > 0 {
			m.WinningTrades++
			grossProfit += t.PnL
			if t.PnL > m.LargestWin {
				m.LargestWin = t.PnL
			}
		} else {
			m.LosingTrades++
			grossLoss += math.Abs(t.PnL)
			if t.PnL < m.LargestLoss {
				m.LargestLoss = t.PnL
			}
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	if m.WinningTrades > 0 {
		m.AvgWin = grossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = -grossLoss / float64(m.LosingTrades)
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossProfit / grossLoss
	}

	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.PnLPercent
	}
	m.SharpeRatio = SharpeRatio(returns)

	return m
}

// SharpeRatio is mean(returns)/stddev(returns) annualized by sqrt(252).
// Zero variance resolves to 0, never a division by zero.
func SharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := MeanStdDev(returns)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// MeanStdDev returns the mean and population standard deviation.
func MeanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}

// maxDrawdown walks the equity curve tracking the running peak. The peak
// starts at the initial capital so a curve that only declines still reports
// its full drawdown.
func maxDrawdown(equity []types.EquityPoint, initialCapital float64) (float64, float64) {
	peak := initialCapital
	maxDD := 0.0
	maxDDPct := 0.0

	for _, point := range equity {
		if point.Equity > peak {
			peak = point.Equity
		}
		dd := peak - point.Equity
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
	}
	return maxDD, maxDDPct
}
