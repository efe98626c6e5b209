package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/strategy"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// buyAndHold enters on the first bar and rides to the forced close.
type buyAndHold struct {
	params *strategy.ParamSet
	done   bool
}

func newBuyAndHold() *buyAndHold {
	return &buyAndHold{params: strategy.NewParamSet()}
}

func (s *buyAndHold) Name() string               { return "buy_and_hold" }
func (s *buyAndHold) WarmupBars() int            { return 0 }
func (s *buyAndHold) Params() *strategy.ParamSet { return s.params }
func (s *buyAndHold) Clone() strategy.Strategy   { return newBuyAndHold() }

func (s *buyAndHold) OnBar(ctx strategy.Context, bar types.Bar) error {
	if !s.done {
		ctx.Buy(1)
		s.done = true
	}
	return nil
}

func trendingMinuteBars(n int) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		price := 100.0 + float64(i)*0.1
		bars[i] = types.Bar{
			Timestamp: time.UnixMilli(int64(i) * 60_000).UTC(),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1,
		}
	}
	return bars
}

func analyzerConfig() backtest.Config {
	cfg := backtest.DefaultConfig()
	cfg.CommissionPct = 0
	return cfg
}

// TestAnalyzeTimeframes_RanksByObjective checks every target runs and the
// best entry carries the highest score.
func TestAnalyzeTimeframes_RanksByObjective(t *testing.T) {
	analyzer := NewAnalyzer(analyzerConfig(), nil)

	analysis, err := analyzer.AnalyzeTimeframes(context.Background(),
		trendingMinuteBars(240), []string{"5m", "15m", "1h"}, newBuyAndHold(), "total_pnl")
	require.NoError(t, err)

	require.Len(t, analysis.Results, 3)
	require.NotNil(t, analysis.Best)
	for _, r := range analysis.Results {
		require.NoError(t, r.Err)
		assert.Equal(t, "total_pnl", analysis.Objective)
		assert.LessOrEqual(t, r.Score, analysis.Best.Score)
	}
}

// TestAnalyzeTimeframes_BadTimeframeIsolated checks one broken target does
// not abort the others.
func TestAnalyzeTimeframes_BadTimeframeIsolated(t *testing.T) {
	analyzer := NewAnalyzer(analyzerConfig(), nil)

	analysis, err := analyzer.AnalyzeTimeframes(context.Background(),
		trendingMinuteBars(60), []string{"5m", "bogus"}, newBuyAndHold(), "")
	require.NoError(t, err)

	require.Len(t, analysis.Results, 2)
	assert.NoError(t, analysis.Results[0].Err)
	assert.Error(t, analysis.Results[1].Err)
	require.NotNil(t, analysis.Best)
	assert.Equal(t, "5m", analysis.Best.Timeframe)
}

// TestAnalyzeTimeframes_EmptyInputs checks the validation errors.
func TestAnalyzeTimeframes_EmptyInputs(t *testing.T) {
	analyzer := NewAnalyzer(analyzerConfig(), nil)

	_, err := analyzer.AnalyzeTimeframes(context.Background(), nil, []string{"5m"}, newBuyAndHold(), "")
	assert.Error(t, err)

	_, err = analyzer.AnalyzeTimeframes(context.Background(), trendingMinuteBars(10), nil, newBuyAndHold(), "")
	assert.Error(t, err)
}
