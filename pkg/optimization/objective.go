package optimization

import (
	"fmt"

	"github.com/quantlab/backtest-engine/internal/backtest"
)

// Objective scores a backtest result; higher is better.
type Objective func(m backtest.Metrics) float64

// DefaultObjective is the metric used when none is configured.
const DefaultObjective = "sharpe_ratio"

var objectives = map[string]Objective{
	"sharpe_ratio":  func(m backtest.Metrics) float64 { return m.SharpeRatio },
	"total_pnl":     func(m backtest.Metrics) float64 { return m.TotalPnL },
	"total_return":  func(m backtest.Metrics) float64 { return m.TotalReturnPct },
	"profit_factor": func(m backtest.Metrics) float64 { return m.ProfitFactor },
	"win_rate":      func(m backtest.Metrics) float64 { return m.WinRate },
	// Negated so that maximizing still means less drawdown.
	"max_drawdown": func(m backtest.Metrics) float64 { return -m.MaxDrawdownPct },
}

// ObjectiveByName resolves a named objective metric.
func ObjectiveByName(name string) (Objective, error) {
	if name == "" {
		name = DefaultObjective
	}
	obj, ok := objectives[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q", name)
	}
	return obj, nil
}
