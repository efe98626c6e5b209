package strategy

import (
	"fmt"
	"sort"
)

var registry = map[string]func() Strategy{
	"ma_cross":     func() Strategy { return NewMACross() },
	"rsi_reversal": func() Strategy { return NewRSIReversal() },
}

// New creates a registered strategy by name.
func New(name string) (Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Available())
	}
	return factory(), nil
}

// Available lists the registered strategy names, sorted.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
