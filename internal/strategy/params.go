package strategy

import "fmt"

// Param is a named numeric knob with its search range. Min, Max and Step
// bound the optimizer's grid for this parameter.
type Param struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
	Step  float64
}

// ParamSet is an ordered collection of parameters addressable by name.
type ParamSet struct {
	ordered []*Param
	byName  map[string]*Param
}

// NewParamSet builds a set preserving declaration order.
func NewParamSet(params ...Param) *ParamSet {
	ps := &ParamSet{byName: make(map[string]*Param, len(params))}
	for i := range params {
		p := params[i]
		ps.ordered = append(ps.ordered, &p)
		ps.byName[p.Name] = &p
	}
	return ps
}

// Get returns the current value of the named parameter, or 0 if absent.
func (ps *ParamSet) Get(name string) float64 {
	if p, ok := ps.byName[name]; ok {
		return p.Value
	}
	return 0
}

// Set updates the named parameter.
func (ps *ParamSet) Set(name string, value float64) error {
	p, ok := ps.byName[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	p.Value = value
	return nil
}

// Apply sets multiple parameters at once, failing on the first unknown name.
func (ps *ParamSet) Apply(values map[string]float64) error {
	for name, value := range values {
		if err := ps.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// List returns the parameters in declaration order.
func (ps *ParamSet) List() []Param {
	out := make([]Param, len(ps.ordered))
	for i, p := range ps.ordered {
		out[i] = *p
	}
	return out
}

// Values returns the current values keyed by name.
func (ps *ParamSet) Values() map[string]float64 {
	out := make(map[string]float64, len(ps.ordered))
	for _, p := range ps.ordered {
		out[p.Name] = p.Value
	}
	return out
}

// Clone returns an independent copy.
func (ps *ParamSet) Clone() *ParamSet {
	return NewParamSet(ps.List()...)
}
