package montecarlo

import "sort"

// Quantile returns the empirical quantile of dist at p using floor(N*p)
// indexing on the sorted values. dist must be non-empty.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// sortedCopy returns values sorted ascending without mutating the input.
func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// computePercentiles builds the fixed percentile summary from a sorted
// distribution.
func computePercentiles(sorted []float64) Percentiles {
	return Percentiles{
		P5:  Quantile(sorted, 0.05),
		P25: Quantile(sorted, 0.25),
		P50: Quantile(sorted, 0.50),
		P75: Quantile(sorted, 0.75),
		P95: Quantile(sorted, 0.95),
	}
}

// computeConfidenceIntervals derives symmetric empirical intervals at each
// requested level: bounds at alpha/2 and 1-alpha/2 where alpha = 1-level.
func computeConfidenceIntervals(sorted []float64, levels []float64) []ConfidenceInterval {
	intervals := make([]ConfidenceInterval, 0, len(levels))
	for _, level := range levels {
		if level <= 0 || level >= 1 {
			continue
		}
		alpha := 1 - level
		intervals = append(intervals, ConfidenceInterval{
			Level: level,
			Lower: Quantile(sorted, alpha/2),
			Upper: Quantile(sorted, 1-alpha/2),
		})
	}
	return intervals
}
