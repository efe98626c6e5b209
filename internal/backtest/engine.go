package backtest

import (
	"context"
	"fmt"

	"github.com/quantlab/backtest-engine/internal/errors"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/internal/monitoring"
	"github.com/quantlab/backtest-engine/internal/strategy"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Config holds the runtime's execution parameters.
type Config struct {
	Symbol          string
	Timeframe       string
	InitialCapital  float64
	CommissionPct   float64 // fraction of fill value charged per fill
	SlippagePct     float64 // fraction the fill price moves against us
	PositionSizePct float64 // position value as % of initial capital
	AllowShorts     bool
	WarmupOverride  int // > 0 replaces the strategy's warmup bar count
}

// DefaultConfig returns a config with the usual starting values.
func DefaultConfig() Config {
	return Config{
		InitialCapital:  10000,
		CommissionPct:   0.001,
		SlippagePct:     0,
		PositionSizePct: 100,
		AllowShorts:     true,
	}
}

// RunState is the runtime's lifecycle phase.
type RunState int

const (
	StateIdle RunState = iota
	StateWarmup
	StateTrading
	StateDone
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateWarmup:
		return "WARMUP"
	case StateTrading:
		return "TRADING"
	case StateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// Engine replays a strategy bar by bar, maintaining at most one open
// position, and produces an immutable Result.
type Engine struct {
	cfg        Config
	log        *logger.Logger
	indicators *strategy.Indicators
}

// NewEngine creates a runtime with the given config.
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = 10000
	}
	if cfg.PositionSizePct <= 0 {
		cfg.PositionSizePct = 100
	}
	if log == nil {
		log = logger.New("backtest")
	}
	return &Engine{cfg: cfg, log: log}
}

// WithIndicators supplies optional externally computed indicator snapshots
// exposed to strategies through the context.
func (e *Engine) WithIndicators(ind *strategy.Indicators) *Engine {
	e.indicators = ind
	return e
}

// Run executes strat over bars. Stop-loss and take-profit levels are
// evaluated against each bar's high/low before OnBar is invoked, stop-loss
// first. Any position still open at the last bar is closed at its close
// price. The returned Result is a snapshot; it is not mutated afterwards.
func (e *Engine) Run(ctx context.Context, bars []types.Bar, strat strategy.Strategy) (*Result, error) {
	defer monitoring.ObserveBacktest(e.cfg.Symbol)()

	run := &runContext{
		engine:     e,
		capital:    e.cfg.InitialCapital,
		equity:     make([]types.EquityPoint, 0, len(bars)),
		indicators: e.indicators,
	}

	warmup := strat.WarmupBars()
	if e.cfg.WarmupOverride > 0 {
		warmup = e.cfg.WarmupOverride
	}

	state := StateIdle
	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		run.history = bars[:i+1]
		run.bar = bar

		if run.position.Open {
			run.checkExitLevels(bar)
		}

		if i < warmup {
			state = StateWarmup
		} else {
			state = StateTrading
		}
		run.entriesSuppressed = state == StateWarmup

		if err := strat.OnBar(run, bar); err != nil {
			return nil, errors.NewStrategyError("backtest", "onBar",
				fmt.Errorf("bar %d (%s): %w", i, bar.Timestamp, err))
		}

		run.recordEquity(bar)
	}

	if run.position.Open && len(bars) > 0 {
		run.bar = bars[len(bars)-1]
		run.closeAt(run.exitFill(run.bar.Close), types.CloseReasonSignal)
	}

	result := &Result{
		Trades:     run.trades,
		Equity:     run.equity,
		Config:     e.cfg,
		Warnings:   run.warnings,
		Strategy:   strat.Name(),
		Parameters: strat.Params().Values(),
	}
	result.Metrics = ComputeMetrics(result.Trades, result.Equity, e.cfg.InitialCapital)
	return result, nil
}

// runContext implements strategy.Context for a single run.
type runContext struct {
	engine            *Engine
	history           []types.Bar
	bar               types.Bar
	position          types.Position
	capital           float64
	trades            []types.Trade
	equity            []types.EquityPoint
	warnings          []string
	entriesSuppressed bool
	indicators        *strategy.Indicators
}

func (r *runContext) History() []types.Bar {
	return r.history
}

func (r *runContext) Position() types.Position {
	return r.position
}

func (r *runContext) Indicators() *strategy.Indicators {
	return r.indicators
}

func (r *runContext) Buy(qty float64, opts ...strategy.OrderOption) {
	r.open(types.DirectionLong, qty, opts)
}

func (r *runContext) Sell(qty float64, opts ...strategy.OrderOption) {
	if !r.engine.cfg.AllowShorts {
		return
	}
	r.open(types.DirectionShort, qty, opts)
}

func (r *runContext) ClosePosition(reason types.CloseReason) {
	if !r.position.Open {
		return
	}
	r.closeAt(r.exitFill(r.bar.Close), reason)
}

func (r *runContext) open(direction types.TradeDirection, qty float64, opts []strategy.OrderOption) {
	if r.entriesSuppressed {
		return
	}
	if r.position.Open {
		// Entry while a position is open is a no-op; surfaced as a warning
		// so callers can detect double-signaling strategies.
		r.warnings = append(r.warnings, fmt.Sprintf(
			"%s entry at %s ignored: position already open", direction, r.bar.Timestamp.Format("2006-01-02 15:04:05")))
		return
	}

	var params strategy.OrderParams
	for _, opt := range opts {
		opt(&params)
	}

	fill := r.entryFill(direction, r.bar.Close)
	if qty <= 0 {
		qty = r.engine.cfg.InitialCapital * (r.engine.cfg.PositionSizePct / 100) / fill
	}

	if fill*qty*r.engine.cfg.CommissionPct > r.capital {
		return
	}

	r.position = types.Position{
		Open:       true,
		Direction:  direction,
		EntryPrice: fill,
		Quantity:   qty,
		StopLoss:   params.StopLoss,
		TakeProfit: params.TakeProfit,
		OpenTime:   r.bar.Timestamp,
	}
}

// checkExitLevels closes the position if the bar's range crosses the
// configured stop-loss or take-profit. Stop-loss wins when both trigger on
// the same bar.
func (r *runContext) checkExitLevels(bar types.Bar) {
	pos := r.position
	switch pos.Direction {
	case types.DirectionLong:
		if pos.StopLoss > 0 && bar.Low <= pos.StopLoss {
			r.closeAt(pos.StopLoss, types.CloseReasonStopLoss)
			return
		}
		if pos.TakeProfit > 0 && bar.High >= pos.TakeProfit {
			r.closeAt(pos.TakeProfit, types.CloseReasonTakeProfit)
		}
	case types.DirectionShort:
		if pos.StopLoss > 0 && bar.High >= pos.StopLoss {
			r.closeAt(pos.StopLoss, types.CloseReasonStopLoss)
			return
		}
		if pos.TakeProfit > 0 && bar.Low <= pos.TakeProfit {
			r.closeAt(pos.TakeProfit, types.CloseReasonTakeProfit)
		}
	}
}

// closeAt realizes the position at exitPrice. The trade pnl is net of both
// the entry and exit commission, so capital stays initial + sum(pnl).
func (r *runContext) closeAt(exitPrice float64, reason types.CloseReason) {
	pos := r.position
	commission := (pos.EntryPrice + exitPrice) * pos.Quantity * r.engine.cfg.CommissionPct

	var gross float64
	if pos.Direction == types.DirectionLong {
		gross = (exitPrice - pos.EntryPrice) * pos.Quantity
	} else {
		gross = (pos.EntryPrice - exitPrice) * pos.Quantity
	}
	pnl := gross - commission

	entryValue := pos.EntryPrice * pos.Quantity
	pnlPct := 0.0
	if entryValue > 0 {
		pnlPct = pnl / entryValue * 100
	}

	r.capital += pnl

	r.trades = append(r.trades, types.Trade{
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   pos.Quantity,
		Direction:  pos.Direction,
		PnL:        pnl,
		PnLPercent: pnlPct,
		OpenTime:   pos.OpenTime,
		CloseTime:  r.bar.Timestamp,
		Reason:     reason,
	})
	r.position = types.Position{}
}

func (r *runContext) recordEquity(bar types.Bar) {
	unrealized := 0.0
	if r.position.Open {
		if r.position.Direction == types.DirectionLong {
			unrealized = (bar.Close - r.position.EntryPrice) * r.position.Quantity
		} else {
			unrealized = (r.position.EntryPrice - bar.Close) * r.position.Quantity
		}
	}
	r.equity = append(r.equity, types.EquityPoint{
		Timestamp: bar.Timestamp,
		Equity:    r.capital + unrealized,
	})
}

// entryFill applies slippage against the entry direction.
func (r *runContext) entryFill(direction types.TradeDirection, price float64) float64 {
	if direction == types.DirectionLong {
		return price * (1 + r.engine.cfg.SlippagePct)
	}
	return price * (1 - r.engine.cfg.SlippagePct)
}

// exitFill applies slippage against the exit of the current position.
func (r *runContext) exitFill(price float64) float64 {
	if r.position.Direction == types.DirectionLong {
		return price * (1 - r.engine.cfg.SlippagePct)
	}
	return price * (1 + r.engine.cfg.SlippagePct)
}
