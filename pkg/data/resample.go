package data

import (
	"fmt"
	"time"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// Resample buckets bars into fixed-width windows of the target timeframe.
// Buckets are aligned to floor(timestamp / interval) * interval. Within a
// bucket: open is the first bar's open, high the max high, low the min low,
// close the last bar's close, volume the sum. Bars are assumed ascending.
// Resampling to the bars' own timeframe is the identity transform.
func Resample(bars []types.Bar, targetTimeframe string) ([]types.Bar, error) {
	interval, err := ParseTimeframe(targetTimeframe)
	if err != nil {
		return nil, err
	}
	return ResampleInterval(bars, interval)
}

// ResampleInterval is Resample with an explicit bucket width.
func ResampleInterval(bars []types.Bar, interval time.Duration) ([]types.Bar, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("resample interval must be positive, got %v", interval)
	}
	if len(bars) == 0 {
		return []types.Bar{}, nil
	}

	intervalMs := interval.Milliseconds()
	out := make([]types.Bar, 0, len(bars))

	bucketStart := int64(-1)
	var current types.Bar

	flush := func() {
		if bucketStart >= 0 {
			out = append(out, current)
		}
	}

	for _, bar := range bars {
		start := bar.TimestampMs() / intervalMs * intervalMs
		if start != bucketStart {
			flush()
			bucketStart = start
			current = types.Bar{
				Timestamp: time.UnixMilli(start).UTC(),
				Open:      bar.Open,
				High:      bar.High,
				Low:       bar.Low,
				Close:     bar.Close,
				Volume:    bar.Volume,
			}
			continue
		}

		if bar.High > current.High {
			current.High = bar.High
		}
		if bar.Low < current.Low {
			current.Low = bar.Low
		}
		current.Close = bar.Close
		current.Volume += bar.Volume
	}
	flush()

	return out, nil
}
