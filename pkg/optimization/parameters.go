package optimization

import (
	"fmt"
	"math"
)

// Parameter is a search range for one strategy knob. The grid enumerates
// Min, Min+Step, ... up to Max inclusive.
type Parameter struct {
	Name string
	Min  float64
	Max  float64
	Step float64
}

// Validate checks the range is enumerable.
func (p Parameter) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("parameter name must not be empty")
	}
	if p.Step <= 0 {
		return fmt.Errorf("parameter %q: step must be positive, got %g", p.Name, p.Step)
	}
	if p.Max < p.Min {
		return fmt.Errorf("parameter %q: max %g below min %g", p.Name, p.Max, p.Min)
	}
	return nil
}

// count is the number of grid points in the range.
func (p Parameter) count() int {
	return int(math.Floor((p.Max-p.Min)/p.Step)) + 1
}

// ParameterSet is one candidate assignment of values.
type ParameterSet map[string]float64

// Clone returns an independent copy.
func (ps ParameterSet) Clone() ParameterSet {
	clone := make(ParameterSet, len(ps))
	for k, v := range ps {
		clone[k] = v
	}
	return clone
}

// totalCombinations is the product of all range counts.
func totalCombinations(params []Parameter) int {
	total := 1
	for _, p := range params {
		total *= p.count()
	}
	return total
}

// generateCombinations expands the full grid in declaration order, first
// parameter varying slowest. The enumeration order is deterministic, which
// is what makes first-found-wins tie-breaking reproducible.
func generateCombinations(params []Parameter) []ParameterSet {
	if len(params) == 0 {
		return []ParameterSet{{}}
	}
	return expand(params, 0, ParameterSet{})
}

func expand(params []Parameter, idx int, current ParameterSet) []ParameterSet {
	if idx >= len(params) {
		return []ParameterSet{current.Clone()}
	}

	p := params[idx]
	var out []ParameterSet
	for i := 0; i < p.count(); i++ {
		next := current.Clone()
		next[p.Name] = p.Min + float64(i)*p.Step
		out = append(out, expand(params, idx+1, next)...)
	}
	return out
}
