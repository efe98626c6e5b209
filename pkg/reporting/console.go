package reporting

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/montecarlo"
	"github.com/quantlab/backtest-engine/pkg/optimization"
	"github.com/quantlab/backtest-engine/pkg/orchestrator"
)

// PrintBacktestResult renders the run summary table to stdout.
func PrintBacktestResult(result *backtest.Result) {
	m := result.Metrics

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Backtest: %s %s %s", result.Strategy, result.Config.Symbol, result.Config.Timeframe))
	t.AppendRows([]table.Row{
		{"Initial Capital", money(result.Config.InitialCapital)},
		{"Final Capital", money(m.FinalCapital)},
		{"Total Return", pct(m.TotalReturnPct)},
		{"Total PnL", money(m.TotalPnL)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", m.SharpeRatio)},
		{"Max Drawdown", pct(m.MaxDrawdownPct)},
		{"Profit Factor", fmt.Sprintf("%.2f", m.ProfitFactor)},
		{"Total Trades", m.TotalTrades},
		{"Win Rate", pct(m.WinRate)},
		{"Winning / Losing", fmt.Sprintf("%d / %d", m.WinningTrades, m.LosingTrades)},
		{"Avg Win / Avg Loss", fmt.Sprintf("%s / %s", money(m.AvgWin), money(m.AvgLoss))},
		{"Largest Win / Loss", fmt.Sprintf("%s / %s", money(m.LargestWin), money(m.LargestLoss))},
	})
	t.SetStyle(table.StyleLight)
	t.Render()

	for _, w := range result.Warnings {
		fmt.Println(text.FgYellow.Sprintf("warning: %s", w))
	}
}

// PrintMonteCarloResult renders the simulation summary table to stdout.
func PrintMonteCarloResult(result *montecarlo.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Monte Carlo: %d runs, %s", result.Runs, result.Method))
	t.AppendRows([]table.Row{
		{"Initial Capital", money(result.InitialCapital)},
		{"Final Equity P5", money(result.Percentiles.P5)},
		{"Final Equity P25", money(result.Percentiles.P25)},
		{"Final Equity P50", money(result.Percentiles.P50)},
		{"Final Equity P75", money(result.Percentiles.P75)},
		{"Final Equity P95", money(result.Percentiles.P95)},
		{"Risk of Ruin", pct(result.RiskOfRuin)},
		{"Ruin Threshold", money(result.RuinThreshold)},
		{"Seeded", result.Seeded},
	})
	for _, ci := range result.ConfidenceIntervals {
		t.AppendRow(table.Row{
			fmt.Sprintf("CI %.0f%%", ci.Level*100),
			fmt.Sprintf("%s .. %s", money(ci.Lower), money(ci.Upper)),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// PrintOptimizationSummary renders the sweep outcome to stdout.
func PrintOptimizationSummary(summary *optimization.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Optimization")
	t.AppendRows([]table.Row{
		{"Completed Runs", fmt.Sprintf("%d / %d", summary.CompletedRuns, summary.TotalRuns)},
		{"Objective", summary.Objective},
		{"Best Score", fmt.Sprintf("%.4f", summary.BestScore)},
		{"Execution Time", summary.ExecutionTime.Round(time.Millisecond)},
	})
	if summary.CompletedRuns < summary.TotalRuns {
		t.AppendRow(table.Row{"Status", "CANCELLED (best-so-far)"})
	}
	names := make([]string, 0, len(summary.BestParameters))
	for name := range summary.BestParameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.AppendRow(table.Row{"param " + name, fmt.Sprintf("%g", summary.BestParameters[name])})
	}
	t.SetStyle(table.StyleLight)
	t.Render()

	if summary.BestResult != nil {
		PrintBacktestResult(summary.BestResult)
	}
}

// PrintTimeframeAnalysis renders the per-timeframe comparison to stdout.
func PrintTimeframeAnalysis(analysis *orchestrator.AnalysisResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Timeframe Analysis (objective: %s)", analysis.Objective))
	t.AppendHeader(table.Row{"Timeframe", "Score", "Return", "Trades", "Max DD", "Status"})
	for _, r := range analysis.Results {
		if r.Err != nil {
			t.AppendRow(table.Row{r.Timeframe, "-", "-", "-", "-", "FAILED: " + r.Err.Error()})
			continue
		}
		status := ""
		if analysis.Best != nil && analysis.Best.Timeframe == r.Timeframe {
			status = "BEST"
		}
		m := r.Result.Metrics
		t.AppendRow(table.Row{
			r.Timeframe,
			fmt.Sprintf("%.4f", r.Score),
			pct(m.TotalReturnPct),
			m.TotalTrades,
			pct(m.MaxDrawdownPct),
			status,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
