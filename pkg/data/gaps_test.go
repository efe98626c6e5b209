package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// TestFindGaps_ReportsMissingBars checks gap bounds and the missing-bar
// count for a hole in a one-minute series.
func TestFindGaps_ReportsMissingBars(t *testing.T) {
	// Minutes 0, 1, then a jump to minute 5: three whole bars missing.
	bars := []types.Bar{
		testBar(0, 10, 11, 9, 10, 1),
		testBar(60_000, 10, 11, 9, 10, 1),
		testBar(300_000, 10, 11, 9, 10, 1),
	}

	gaps := FindGaps(bars, time.Minute)
	require.Len(t, gaps, 1)
	assert.Equal(t, int64(60_000), gaps[0].Start.UnixMilli())
	assert.Equal(t, int64(300_000), gaps[0].End.UnixMilli())
	assert.Equal(t, 3, gaps[0].MissingBars)
}

// TestFindGaps_ToleratesJitter checks that spacing within 1.5x the interval
// is not flagged.
func TestFindGaps_ToleratesJitter(t *testing.T) {
	bars := []types.Bar{
		testBar(0, 10, 11, 9, 10, 1),
		testBar(89_000, 10, 11, 9, 10, 1), // 1.48x interval
	}
	assert.Empty(t, FindGaps(bars, time.Minute))

	bars[1] = testBar(91_000, 10, 11, 9, 10, 1) // 1.52x interval
	gaps := FindGaps(bars, time.Minute)
	require.Len(t, gaps, 1)
	assert.Equal(t, 0, gaps[0].MissingBars)
}

func TestFindGaps_ShortOrEmptySeries(t *testing.T) {
	assert.Empty(t, FindGaps(nil, time.Minute))
	assert.Empty(t, FindGaps(minuteBars(1, 0), time.Minute))
	assert.Empty(t, FindGaps(minuteBars(10, 0), time.Minute))
}
