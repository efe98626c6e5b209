package strategy

import (
	"github.com/quantlab/backtest-engine/pkg/types"
)

// MACross is a moving-average crossover strategy: it goes long when the fast
// SMA crosses above the slow SMA and short on the opposite cross. Stop-loss
// and take-profit levels are attached to each entry as percentage distances
// from the fill price.
type MACross struct {
	params *ParamSet
}

// NewMACross creates the strategy with its default parameters.
func NewMACross() *MACross {
	return &MACross{
		params: NewParamSet(
			Param{Name: "fast_period", Value: 9, Min: 5, Max: 20, Step: 1},
			Param{Name: "slow_period", Value: 21, Min: 15, Max: 50, Step: 5},
			Param{Name: "stop_loss_pct", Value: 2.0, Min: 0.5, Max: 5.0, Step: 0.5},
			Param{Name: "take_profit_pct", Value: 4.0, Min: 1.0, Max: 10.0, Step: 1.0},
		),
	}
}

func (s *MACross) Name() string {
	return "ma_cross"
}

func (s *MACross) Params() *ParamSet {
	return s.params
}

func (s *MACross) WarmupBars() int {
	return int(s.params.Get("slow_period")) + 1
}

func (s *MACross) Clone() Strategy {
	return &MACross{params: s.params.Clone()}
}

func (s *MACross) OnBar(ctx Context, bar types.Bar) error {
	fast := int(s.params.Get("fast_period"))
	slow := int(s.params.Get("slow_period"))

	history := ctx.History()
	if len(history) < slow+2 {
		return nil
	}

	// SMAs over the window ending at the previous bar, compared with the
	// window one bar earlier, so a cross is detected on its first bar.
	fastMA := smaClose(history, len(history)-1, fast)
	slowMA := smaClose(history, len(history)-1, slow)
	prevFast := smaClose(history, len(history)-2, fast)
	prevSlow := smaClose(history, len(history)-2, slow)

	crossedUp := prevFast <= prevSlow && fastMA > slowMA
	crossedDown := prevFast >= prevSlow && fastMA < slowMA

	pos := ctx.Position()
	if pos.Open {
		// Exit on the opposite cross; stop-loss and take-profit exits are
		// handled by the runtime against the attached levels.
		if (pos.Direction == types.DirectionLong && crossedDown) ||
			(pos.Direction == types.DirectionShort && crossedUp) {
			ctx.ClosePosition(types.CloseReasonSignal)
		}
		return nil
	}

	slPct := s.params.Get("stop_loss_pct") / 100
	tpPct := s.params.Get("take_profit_pct") / 100

	if crossedUp {
		ctx.Buy(0,
			WithStopLoss(bar.Close*(1-slPct)),
			WithTakeProfit(bar.Close*(1+tpPct)),
		)
	} else if crossedDown {
		ctx.Sell(0,
			WithStopLoss(bar.Close*(1+slPct)),
			WithTakeProfit(bar.Close*(1-tpPct)),
		)
	}
	return nil
}

// smaClose is the simple moving average of closes over the period bars
// ending at endIdx (exclusive).
func smaClose(bars []types.Bar, endIdx, period int) float64 {
	if period <= 0 || endIdx < period {
		return 0
	}
	sum := 0.0
	for i := endIdx - period; i < endIdx; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}
