package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Validator filters malformed bars instead of failing on them. Every dropped
// bar is logged with its cause so data problems stay visible.
type Validator struct {
	log *logger.Logger
}

// NewValidator creates a validator logging through the given logger.
func NewValidator(log *logger.Logger) *Validator {
	if log == nil {
		log = logger.New("data")
	}
	return &Validator{log: log}
}

// Validate drops any bar violating the OHLC invariants and returns the
// surviving bars sorted ascending with duplicate timestamps removed (first
// occurrence wins). Empty input yields empty output; Validate never errors.
func (v *Validator) Validate(bars []types.Bar) []types.Bar {
	if len(bars) == 0 {
		return []types.Bar{}
	}

	valid := make([]types.Bar, 0, len(bars))
	for i, bar := range bars {
		if cause := invariantViolation(bar); cause != "" {
			v.log.Warn("dropping bar %d at %s: %s", i, bar.Timestamp.Format(time.RFC3339), cause)
			continue
		}
		valid = append(valid, bar)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	return v.dedupe(valid)
}

// dedupe removes duplicate timestamps, keeping the first occurrence.
func (v *Validator) dedupe(bars []types.Bar) []types.Bar {
	if len(bars) <= 1 {
		return bars
	}

	out := bars[:0:0]
	seen := make(map[int64]bool, len(bars))
	for _, bar := range bars {
		ms := bar.TimestampMs()
		if seen[ms] {
			v.log.Warn("dropping duplicate bar at %s", bar.Timestamp.Format(time.RFC3339))
			continue
		}
		seen[ms] = true
		out = append(out, bar)
	}
	return out
}

func invariantViolation(b types.Bar) string {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return "non-positive price"
	}
	if b.High < b.Low {
		return fmt.Sprintf("high %.8f below low %.8f", b.High, b.Low)
	}
	if b.High < b.Open || b.High < b.Close {
		return fmt.Sprintf("high %.8f below open/close", b.High)
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Sprintf("low %.8f above open/close", b.Low)
	}
	return ""
}

// FilterOutliers drops bars whose close jumps more than maxJumpPct percent
// from the previous surviving bar's close. The first bar is always kept.
func (v *Validator) FilterOutliers(bars []types.Bar, maxJumpPct float64) []types.Bar {
	if len(bars) <= 1 || maxJumpPct <= 0 {
		return bars
	}

	out := make([]types.Bar, 0, len(bars))
	out = append(out, bars[0])
	for _, bar := range bars[1:] {
		prev := out[len(out)-1].Close
		jump := (bar.Close - prev) / prev * 100
		if jump > maxJumpPct || jump < -maxJumpPct {
			v.log.Warn("dropping outlier bar at %s: close moved %.2f%% against %.8f",
				bar.Timestamp.Format(time.RFC3339), jump, prev)
			continue
		}
		out = append(out, bar)
	}
	return out
}

// FilterByDateRange returns the bars within [start, end], inclusive. A zero
// start or end leaves that side unbounded.
func FilterByDateRange(bars []types.Bar, start, end time.Time) []types.Bar {
	filtered := make([]types.Bar, 0, len(bars))
	for _, bar := range bars {
		if !start.IsZero() && bar.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && bar.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, bar)
	}
	return filtered
}
