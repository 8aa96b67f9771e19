package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source draws variant indexes from a PCG generator.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a deterministic source for the given seed.
func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeeded creates a source seeded from the wall clock.
func NewTimeSeeded() *Source {
	return NewSource(uint64(time.Now().UnixNano()))
}

// IntN returns a uniformly distributed value in [0, n).
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
