package data

import (
	"time"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// gapTolerance is the slack factor before two consecutive bars count as a
// gap: elapsed time must exceed 1.5x the expected interval.
const gapTolerance = 1.5

// FindGaps flags consecutive-bar gaps in an ascending series. For each gap
// it reports the bounding bar times and the number of whole bars missing,
// floor(gap/interval) - 1.
func FindGaps(bars []types.Bar, expectedInterval time.Duration) []Gap {
	gaps := []Gap{}
	if len(bars) < 2 || expectedInterval <= 0 {
		return gaps
	}

	threshold := time.Duration(float64(expectedInterval) * gapTolerance)
	for i := 1; i < len(bars); i++ {
		elapsed := bars[i].Timestamp.Sub(bars[i-1].Timestamp)
		if elapsed <= threshold {
			continue
		}
		gaps = append(gaps, Gap{
			Start:       bars[i-1].Timestamp,
			End:         bars[i].Timestamp,
			MissingBars: int(elapsed/expectedInterval) - 1,
		})
	}
	return gaps
}
