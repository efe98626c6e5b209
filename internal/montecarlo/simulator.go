package montecarlo

import (
	"context"
	"fmt"
	"math"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/errors"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/internal/monitoring"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Method selects how a trade ledger is resampled.
type Method string

const (
	MethodBootstrap  Method = "BOOTSTRAP"
	MethodShuffle    Method = "SHUFFLE"
	MethodParametric Method = "PARAMETRIC"
)

// RuinThresholdFraction is the fixed ruin policy: a run is ruined when its
// final equity falls below this fraction of the initial capital.
const RuinThresholdFraction = 0.5

// Config drives one simulation call.
type Config struct {
	Runs             int
	Method           Method
	ConfidenceLevels []float64
	Seed             *uint32 // nil selects a non-reproducible seed
	InitialCapital   float64 // <= 0 falls back to the backtest's capital
}

// DefaultConfig returns the usual simulation settings.
func DefaultConfig() Config {
	return Config{
		Runs:             1000,
		Method:           MethodBootstrap,
		ConfidenceLevels: []float64{0.90, 0.95},
	}
}

// Distribution holds the per-run outcome metrics.
type Distribution struct {
	FinalEquity []float64
	MaxDrawdown []float64
	SharpeRatio []float64
}

// Percentiles summarizes the sorted final-equity distribution.
type Percentiles struct {
	P5  float64
	P25 float64
	P50 float64
	P75 float64
	P95 float64
}

// ConfidenceInterval is a symmetric empirical interval on final equity.
type ConfidenceInterval struct {
	Level float64
	Lower float64
	Upper float64
}

// Result is the immutable outcome of a simulation call.
type Result struct {
	Runs                int
	Method              Method
	Distribution        Distribution
	Percentiles         Percentiles
	RiskOfRuin          float64 // percent of runs, in [0,100]
	ConfidenceIntervals []ConfidenceInterval
	InitialCapital      float64
	RuinThreshold       float64
	Seeded              bool
}

// Simulator resamples a completed trade ledger to estimate outcome risk.
type Simulator struct {
	log *logger.Logger
}

// NewSimulator creates a simulator.
func NewSimulator(log *logger.Logger) *Simulator {
	if log == nil {
		log = logger.New("montecarlo")
	}
	return &Simulator{log: log}
}

// RunSimulation resamples the backtest's trades cfg.Runs times and
// aggregates the outcome distribution. An empty ledger is a validation
// error, never an empty result: defaulting silently would corrupt the
// downstream statistics.
func (s *Simulator) RunSimulation(ctx context.Context, res *backtest.Result, cfg Config) (*Result, error) {
	if res == nil || len(res.Trades) == 0 {
		return nil, errors.NewValidationError("montecarlo", "runSimulation", "no trades available for simulation")
	}
	if cfg.Runs <= 0 {
		return nil, errors.NewValidationError("montecarlo", "runSimulation", fmt.Sprintf("runs must be positive, got %d", cfg.Runs))
	}

	initialCapital := cfg.InitialCapital
	if initialCapital <= 0 {
		initialCapital = res.Config.InitialCapital
	}
	if initialCapital <= 0 {
		return nil, errors.NewValidationError("montecarlo", "runSimulation", "initial capital must be positive")
	}

	var rng *Mulberry32
	if cfg.Seed != nil {
		rng = NewMulberry32(*cfg.Seed)
	} else {
		rng = newTimeSeeded()
	}

	sampler, err := newSampler(cfg.Method, res.Trades, rng)
	if err != nil {
		return nil, err
	}

	dist := Distribution{
		FinalEquity: make([]float64, 0, cfg.Runs),
		MaxDrawdown: make([]float64, 0, cfg.Runs),
		SharpeRatio: make([]float64, 0, cfg.Runs),
	}

	ruinThreshold := RuinThresholdFraction * initialCapital
	ruined := 0

	for run := 0; run < cfg.Runs; run++ {
		// The context check after each run is the cooperative yield point;
		// a single run is the unit of uninterruptible work.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome := replay(sampler.sample(), initialCapital)
		dist.FinalEquity = append(dist.FinalEquity, outcome.finalEquity)
		dist.MaxDrawdown = append(dist.MaxDrawdown, outcome.maxDrawdownPct)
		dist.SharpeRatio = append(dist.SharpeRatio, outcome.sharpe)
		if outcome.finalEquity < ruinThreshold {
			ruined++
		}
	}
	monitoring.AddMonteCarloRuns(string(cfg.Method), cfg.Runs)

	sorted := sortedCopy(dist.FinalEquity)
	result := &Result{
		Runs:                cfg.Runs,
		Method:              cfg.Method,
		Distribution:        dist,
		Percentiles:         computePercentiles(sorted),
		RiskOfRuin:          float64(ruined) / float64(cfg.Runs) * 100,
		ConfidenceIntervals: computeConfidenceIntervals(sorted, cfg.ConfidenceLevels),
		InitialCapital:      initialCapital,
		RuinThreshold:       ruinThreshold,
		Seeded:              cfg.Seed != nil,
	}

	s.log.Info("simulated %d %s runs: median equity %.2f, risk of ruin %.2f%%",
		cfg.Runs, cfg.Method, result.Percentiles.P50, result.RiskOfRuin)
	return result, nil
}

// runOutcome is the accumulator threaded through one replay.
type runOutcome struct {
	finalEquity    float64
	maxDrawdownPct float64
	sharpe         float64
}

// replay walks a resampled pnl sequence from the initial capital, tracking
// running equity, peak equity and per-trade returns.
func replay(pnls []float64, initialCapital float64) runOutcome {
	equity := initialCapital
	peak := initialCapital
	maxDDPct := 0.0
	returns := make([]float64, 0, len(pnls))

	for _, pnl := range pnls {
		if equity > 0 {
			returns = append(returns, pnl/equity)
		} else {
			returns = append(returns, 0)
		}
		equity += pnl
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			dd := (peak - equity) / peak * 100
			if dd > maxDDPct {
				maxDDPct = dd
			}
		}
	}

	return runOutcome{
		finalEquity:    equity,
		maxDrawdownPct: maxDDPct,
		sharpe:         backtest.SharpeRatio(returns),
	}
}

// sampler produces one resampled pnl sequence per call.
type sampler interface {
	sample() []float64
}

func newSampler(method Method, trades []types.Trade, rng *Mulberry32) (sampler, error) {
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnL
	}

	switch method {
	case MethodBootstrap:
		return &bootstrapSampler{pnls: pnls, rng: rng}, nil
	case MethodShuffle:
		return &shuffleSampler{pnls: pnls, rng: rng}, nil
	case MethodParametric:
		return newParametricSampler(trades, rng), nil
	default:
		return nil, errors.NewValidationError("montecarlo", "runSimulation", fmt.Sprintf("unknown sampling method %q", method))
	}
}

// bootstrapSampler draws N trades independently and uniformly with
// replacement; order is the draw order.
type bootstrapSampler struct {
	pnls []float64
	rng  *Mulberry32
}

func (s *bootstrapSampler) sample() []float64 {
	out := make([]float64, len(s.pnls))
	for i := range out {
		out[i] = s.pnls[s.rng.Intn(len(s.pnls))]
	}
	return out
}

// shuffleSampler returns a uniform random permutation (Fisher-Yates); the
// resampled multiset is exactly the original set, reordered.
type shuffleSampler struct {
	pnls []float64
	rng  *Mulberry32
}

func (s *shuffleSampler) sample() []float64 {
	out := make([]float64, len(s.pnls))
	copy(out, s.pnls)
	for i := len(out) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// parametricSampler fits mean/stddev of the historical percent returns and
// generates synthetic returns via the Box-Muller transform, converting each
// back to a pnl using the historical average entry value.
type parametricSampler struct {
	n          int
	mean       float64
	stdDev     float64
	entryValue float64
	rng        *Mulberry32
}

func newParametricSampler(trades []types.Trade, rng *Mulberry32) *parametricSampler {
	returns := make([]float64, len(trades))
	entryValue := 0.0
	for i, t := range trades {
		returns[i] = t.PnLPercent
		entryValue += t.EntryPrice * t.Quantity
	}
	entryValue /= float64(len(trades))

	mean, std := backtest.MeanStdDev(returns)
	return &parametricSampler{
		n:          len(trades),
		mean:       mean,
		stdDev:     std,
		entryValue: entryValue,
		rng:        rng,
	}
}

func (s *parametricSampler) sample() []float64 {
	out := make([]float64, s.n)
	for i := range out {
		ret := s.mean + s.stdDev*s.normal()
		out[i] = ret / 100 * s.entryValue
	}
	return out
}

// normal draws a standard normal via Box-Muller.
func (s *parametricSampler) normal() float64 {
	u1 := s.rng.Float64()
	u2 := s.rng.Float64()
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
