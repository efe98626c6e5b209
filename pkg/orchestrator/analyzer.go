// Package orchestrator coordinates whole workflows on top of the runtime:
// running one strategy across several timeframes and ranking the outcomes.
package orchestrator

import (
	"context"
	"sync"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/errors"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/internal/strategy"
	"github.com/quantlab/backtest-engine/pkg/data"
	"github.com/quantlab/backtest-engine/pkg/optimization"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// TimeframeResult is the outcome of one timeframe's backtest.
type TimeframeResult struct {
	Timeframe string
	Result    *backtest.Result
	Score     float64
	Err       error
}

// AnalysisResult ranks a strategy's performance across timeframes.
type AnalysisResult struct {
	Results   []TimeframeResult
	Best      *TimeframeResult
	Objective string
}

// Analyzer runs a strategy over multiple timeframes derived from one native
// bar series.
type Analyzer struct {
	cfg backtest.Config
	log *logger.Logger
}

// NewAnalyzer creates an analyzer that reuses cfg for every timeframe run.
func NewAnalyzer(cfg backtest.Config, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.New("orchestrator")
	}
	return &Analyzer{cfg: cfg, log: log}
}

// AnalyzeTimeframes resamples nativeBars to each target timeframe and runs
// base on each, concurrently. Runs share nothing mutable: every goroutine
// gets its own resampled series and its own strategy clone. A timeframe that
// cannot be resampled or backtested carries its error in the result slice
// rather than aborting the others. Best is the highest-scoring successful
// run by the named objective, nil if all failed.
func (a *Analyzer) AnalyzeTimeframes(ctx context.Context, nativeBars []types.Bar, targets []string, base strategy.Strategy, objectiveName string) (*AnalysisResult, error) {
	if len(nativeBars) == 0 {
		return nil, errors.NewValidationError("orchestrator", "analyzeTimeframes", "no bars to analyze")
	}
	if len(targets) == 0 {
		return nil, errors.NewValidationError("orchestrator", "analyzeTimeframes", "no target timeframes")
	}
	if objectiveName == "" {
		objectiveName = optimization.DefaultObjective
	}
	objective, err := optimization.ObjectiveByName(objectiveName)
	if err != nil {
		return nil, err
	}

	results := make([]TimeframeResult, len(targets))
	var wg sync.WaitGroup
	for i, tf := range targets {
		wg.Add(1)
		go func(i int, tf string) {
			defer wg.Done()
			results[i] = a.runOne(ctx, nativeBars, tf, base, objective)
		}(i, tf)
	}
	wg.Wait()

	analysis := &AnalysisResult{Results: results, Objective: objectiveName}
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			a.log.Warn("timeframe %s failed: %v", r.Timeframe, r.Err)
			continue
		}
		if analysis.Best == nil || r.Score > analysis.Best.Score {
			analysis.Best = r
		}
	}
	return analysis, nil
}

func (a *Analyzer) runOne(ctx context.Context, nativeBars []types.Bar, timeframe string, base strategy.Strategy, objective optimization.Objective) TimeframeResult {
	out := TimeframeResult{Timeframe: timeframe}

	bars, err := data.Resample(nativeBars, timeframe)
	if err != nil {
		out.Err = err
		return out
	}

	cfg := a.cfg
	cfg.Timeframe = timeframe
	engine := backtest.NewEngine(cfg, a.log)

	result, err := engine.Run(ctx, bars, base.Clone())
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = result
	out.Score = objective(result.Metrics)
	return out
}
