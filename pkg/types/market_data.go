package types

import "time"

// Bar is a single OHLCV candle. Prices are validated upstream by the data
// manager; consumers may assume High >= max(Open, Close), Low <= min(Open,
// Close) and all prices > 0 once validation has run.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// TimestampMs returns the bar time in epoch milliseconds.
func (b Bar) TimestampMs() int64 {
	return b.Timestamp.UnixMilli()
}

// TimeSec returns the bar time in epoch seconds.
func (b Bar) TimeSec() int64 {
	return b.Timestamp.Unix()
}

// Valid reports whether the bar satisfies the OHLC invariants.
func (b Bar) Valid() bool {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	if b.High < b.Open || b.High < b.Close || b.High < b.Low {
		return false
	}
	if b.Low > b.Open || b.Low > b.Close {
		return false
	}
	return true
}

// Ticker is a point-in-time price snapshot.
type Ticker struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}
