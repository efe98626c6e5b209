package montecarlo

import "time"

// Mulberry32 is a small, fast 32-bit PRNG. Given the same seed it produces
// an identical stream of [0,1) values across runs and across processes,
// which is what makes seeded simulations reproducible. Not safe for
// concurrent use; each simulation owns its generator.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 creates a generator with the given seed.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// newTimeSeeded creates a generator seeded from the clock. Results are then
// deliberately non-reproducible.
func newTimeSeeded() *Mulberry32 {
	return NewMulberry32(uint32(time.Now().UnixNano()))
}

// Float64 returns the next value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	z := m.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / 4294967296.0
}

// Intn returns a uniform integer in [0, n).
func (m *Mulberry32) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(m.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
