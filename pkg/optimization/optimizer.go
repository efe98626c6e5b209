package optimization

import (
	"context"
	"math"
	"time"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/errors"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/internal/monitoring"
	"github.com/quantlab/backtest-engine/internal/strategy"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Config describes one optimization sweep.
type Config struct {
	Parameters []Parameter
	Objective  string // named metric, DefaultObjective when empty
}

// ProgressFunc is called after each completed candidate.
type ProgressFunc func(completed, total int)

// Summary is the sweep outcome. CompletedRuns < TotalRuns signals that the
// sweep was cancelled and the best-so-far state is being returned.
type Summary struct {
	CompletedRuns  int
	TotalRuns      int
	BestResult     *backtest.Result
	BestParameters ParameterSet
	BestScore      float64
	Objective      string
	ExecutionTime  time.Duration
}

// Optimizer drives the strategy runtime over a parameter grid, tracking the
// best-scoring candidate.
type Optimizer struct {
	engine *backtest.Engine
	log    *logger.Logger
}

// NewOptimizer creates a grid-search optimizer over the given runtime.
func NewOptimizer(engine *backtest.Engine, log *logger.Logger) *Optimizer {
	if log == nil {
		log = logger.New("optimization")
	}
	return &Optimizer{engine: engine, log: log}
}

// Optimize enumerates the parameter grid and runs one full, independent
// backtest per candidate over the same bar sequence. Ties in objective score
// go to the first candidate found. Cancellation is observed between
// candidates; a cancelled sweep returns the best result found so far rather
// than an error. A candidate that fails to build or run is logged, counted
// as completed and skipped, so one bad candidate never aborts the sweep.
func (o *Optimizer) Optimize(ctx context.Context, bars []types.Bar, base strategy.Strategy, cfg Config, onProgress ProgressFunc) (*Summary, error) {
	start := time.Now()

	for _, p := range cfg.Parameters {
		if err := p.Validate(); err != nil {
			return nil, errors.NewConfigurationError("optimization", "optimize", err.Error())
		}
	}
	objective, err := ObjectiveByName(cfg.Objective)
	if err != nil {
		return nil, errors.NewConfigurationError("optimization", "optimize", err.Error())
	}
	objectiveName := cfg.Objective
	if objectiveName == "" {
		objectiveName = DefaultObjective
	}

	combinations := generateCombinations(cfg.Parameters)
	summary := &Summary{
		TotalRuns: len(combinations),
		BestScore: math.Inf(-1),
		Objective: objectiveName,
	}

	o.log.Info("starting grid search: %d candidates, objective %s", summary.TotalRuns, objectiveName)

	for _, candidate := range combinations {
		if ctx.Err() != nil {
			o.log.Warn("sweep cancelled after %d/%d candidates", summary.CompletedRuns, summary.TotalRuns)
			break
		}

		result, runErr := o.evaluate(ctx, bars, base, candidate)
		if runErr != nil {
			// A candidate aborted by cancellation is not counted as
			// completed; any other failure is local to the candidate.
			if ctx.Err() != nil {
				break
			}
			o.log.Warn("candidate %v failed, skipping: %v", candidate, runErr)
			summary.CompletedRuns++
			o.reportProgress(base.Name(), summary, onProgress)
			continue
		}

		score := objective(result.Metrics)
		if score > summary.BestScore {
			summary.BestScore = score
			summary.BestResult = result
			summary.BestParameters = candidate.Clone()
		}

		summary.CompletedRuns++
		monitoring.RecordOptimizationCandidate(base.Name())
		o.reportProgress(base.Name(), summary, onProgress)
	}

	summary.ExecutionTime = time.Since(start)
	o.log.Info("grid search done: %d/%d candidates in %s, best %s %.4f",
		summary.CompletedRuns, summary.TotalRuns, summary.ExecutionTime, objectiveName, summary.BestScore)
	return summary, nil
}

// evaluate runs one candidate on an independent strategy clone.
func (o *Optimizer) evaluate(ctx context.Context, bars []types.Bar, base strategy.Strategy, candidate ParameterSet) (*backtest.Result, error) {
	variant := base.Clone()
	if err := variant.Params().Apply(candidate); err != nil {
		return nil, err
	}
	return o.engine.Run(ctx, bars, variant)
}

func (o *Optimizer) reportProgress(strategyName string, summary *Summary, onProgress ProgressFunc) {
	if summary.TotalRuns > 0 {
		monitoring.SetOptimizationProgress(strategyName, float64(summary.CompletedRuns)/float64(summary.TotalRuns))
	}
	if onProgress != nil {
		onProgress(summary.CompletedRuns, summary.TotalRuns)
	}
}
