package strategy

import (
	"github.com/quantlab/backtest-engine/pkg/types"
)

// RSIReversal enters long when RSI drops below the oversold level and short
// when it rises above the overbought level, exiting on the opposite extreme.
type RSIReversal struct {
	params *ParamSet
}

// NewRSIReversal creates the strategy with its default parameters.
func NewRSIReversal() *RSIReversal {
	return &RSIReversal{
		params: NewParamSet(
			Param{Name: "period", Value: 14, Min: 7, Max: 28, Step: 7},
			Param{Name: "oversold", Value: 30, Min: 20, Max: 40, Step: 5},
			Param{Name: "overbought", Value: 70, Min: 60, Max: 80, Step: 5},
			Param{Name: "stop_loss_pct", Value: 2.0, Min: 0.5, Max: 5.0, Step: 0.5},
		),
	}
}

func (s *RSIReversal) Name() string {
	return "rsi_reversal"
}

func (s *RSIReversal) Params() *ParamSet {
	return s.params
}

func (s *RSIReversal) WarmupBars() int {
	return int(s.params.Get("period")) + 1
}

func (s *RSIReversal) Clone() Strategy {
	return &RSIReversal{params: s.params.Clone()}
}

func (s *RSIReversal) OnBar(ctx Context, bar types.Bar) error {
	period := int(s.params.Get("period"))
	oversold := s.params.Get("oversold")
	overbought := s.params.Get("overbought")

	history := ctx.History()
	rsi, ok := rsiClose(history, period)
	if !ok {
		return nil
	}

	pos := ctx.Position()
	if pos.Open {
		if (pos.Direction == types.DirectionLong && rsi > overbought) ||
			(pos.Direction == types.DirectionShort && rsi < oversold) {
			ctx.ClosePosition(types.CloseReasonSignal)
		}
		return nil
	}

	slPct := s.params.Get("stop_loss_pct") / 100

	if rsi < oversold {
		ctx.Buy(0, WithStopLoss(bar.Close*(1-slPct)))
	} else if rsi > overbought {
		ctx.Sell(0, WithStopLoss(bar.Close*(1+slPct)))
	}
	return nil
}

// rsiClose computes the RSI of the last period+1 closes. Returns false while
// the history is too short.
func rsiClose(bars []types.Bar, period int) (float64, bool) {
	if period <= 0 || len(bars) < period+1 {
		return 0, false
	}

	gain := 0.0
	loss := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}

	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}
