package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// State returns Alive or Dead with equal probability.
func (r *RNG) State() uint8 {
	if r.Bool() {
		return Alive
	}
	return Dead
}

// RandomStates returns a cell initializer for NewGridFunc that draws each
// state from the RNG in row-major order.
func RandomStates(r *RNG) func(row, col int) uint8 {
	return func(int, int) uint8 { return r.State() }
}
