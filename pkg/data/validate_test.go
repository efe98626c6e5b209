package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtest-engine/pkg/types"
)

// TestValidate_DropsInvariantViolations checks that bars breaking the OHLC
// invariants are dropped and the rest survive.
func TestValidate_DropsInvariantViolations(t *testing.T) {
	bars := []types.Bar{
		testBar(0, 9.5, 10, 9, 9.8, 1),
		testBar(60_000, 8.5, 8, 9, 8.5, 1), // high below low
		testBar(120_000, 10.5, 11, 10, 10.8, 1),
	}

	out := NewValidator(nil).Validate(bars)
	require.Len(t, out, 2)
	assert.Equal(t, int64(0), out[0].TimestampMs())
	assert.Equal(t, int64(120_000), out[1].TimestampMs())
}

func TestValidate_DropsNonPositivePrices(t *testing.T) {
	bars := []types.Bar{
		testBar(0, 10, 11, 9, 10, 1),
		testBar(60_000, 0, 11, 9, 10, 1),
		testBar(120_000, 10, 11, -2, 10, 1),
	}

	out := NewValidator(nil).Validate(bars)
	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].TimestampMs())
}

// TestValidate_SortsAscending checks that out-of-order input comes back
// time-ascending.
func TestValidate_SortsAscending(t *testing.T) {
	bars := []types.Bar{
		testBar(120_000, 10, 11, 9, 10, 1),
		testBar(0, 10, 11, 9, 10, 1),
		testBar(60_000, 10, 11, 9, 10, 1),
	}

	out := NewValidator(nil).Validate(bars)
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i-1].Timestamp.Before(out[i].Timestamp))
	}
}

// TestValidate_DedupesFirstWins checks duplicate timestamps keep the first
// occurrence.
func TestValidate_DedupesFirstWins(t *testing.T) {
	bars := []types.Bar{
		testBar(0, 10, 11, 9, 10, 1),
		testBar(60_000, 20, 21, 19, 20, 1),
		testBar(60_000, 30, 31, 29, 30, 1),
	}

	out := NewValidator(nil).Validate(bars)
	require.Len(t, out, 2)
	assert.Equal(t, 20.0, out[1].Open)
}

// TestFilterOutliers_DropsSpikes checks comparisons run against the last
// surviving bar, so one spike does not shadow later good bars.
func TestFilterOutliers_DropsSpikes(t *testing.T) {
	bars := []types.Bar{
		testBar(0, 100, 101, 99, 100, 1),
		testBar(60_000, 100, 501, 99, 500, 1), // +400% spike
		testBar(120_000, 101, 102, 100, 101, 1),
	}

	out := NewValidator(nil).FilterOutliers(bars, 50)
	require.Len(t, out, 2)
	assert.Equal(t, 100.0, out[0].Close)
	assert.Equal(t, 101.0, out[1].Close)
}

func TestFilterOutliers_KeepsNormalMoves(t *testing.T) {
	bars := minuteBars(5, 0)
	assert.Equal(t, bars, NewValidator(nil).FilterOutliers(bars, 50))
}

func TestValidate_EmptyInput(t *testing.T) {
	assert.Empty(t, NewValidator(nil).Validate(nil))
}

// TestFilterByDateRange checks inclusive bounds and zero-value unbounded
// sides.
func TestFilterByDateRange(t *testing.T) {
	bars := minuteBars(5, 0)

	from := time.UnixMilli(60_000).UTC()
	to := time.UnixMilli(180_000).UTC()

	out := FilterByDateRange(bars, from, to)
	require.Len(t, out, 3)
	assert.Equal(t, int64(60_000), out[0].TimestampMs())
	assert.Equal(t, int64(180_000), out[2].TimestampMs())

	assert.Len(t, FilterByDateRange(bars, time.Time{}, to), 4)
	assert.Len(t, FilterByDateRange(bars, from, time.Time{}), 4)
	assert.Len(t, FilterByDateRange(bars, time.Time{}, time.Time{}), 5)
}
