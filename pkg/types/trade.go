package types

import "time"

// TradeDirection is the side of a position.
type TradeDirection int

const (
	DirectionLong TradeDirection = iota
	DirectionShort
)

func (d TradeDirection) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	default:
		return "UNKNOWN"
	}
}

// CloseReason records why a position was closed.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "STOP_LOSS"
	CloseReasonTakeProfit CloseReason = "TAKE_PROFIT"
	CloseReasonSignal     CloseReason = "SIGNAL"
)

// Trade is a completed round trip. Created only when a position closes and
// immutable thereafter.
type Trade struct {
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	Direction  TradeDirection
	PnL        float64
	PnLPercent float64
	OpenTime   time.Time
	CloseTime  time.Time
	Reason     CloseReason
}

// Position is the single open position the runtime tracks.
type Position struct {
	Open       bool
	Direction  TradeDirection
	EntryPrice float64
	Quantity   float64
	StopLoss   float64 // 0 means no stop
	TakeProfit float64 // 0 means no target
	OpenTime   time.Time
}

// EquityPoint is one sample on the equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}
