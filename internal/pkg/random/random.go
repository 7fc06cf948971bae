// Package random provides a seedable, concurrency-safe source of
// pseudo-random numbers shared by fault injection and entity creation.
package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the subset of math/rand/v2 used by the API.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Int64N returns a value in [0, n). It panics if n <= 0.
	Int64N(n int64) int64
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Source seeded with seed. Equal seeds produce equal sequences.
func New(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

// NewFromTime returns a Source seeded from the wall clock.
func NewFromTime() Source {
	return New(uint64(time.Now().UnixNano()))
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *lockedSource) Int64N(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int64N(n)
}

// Duration returns a uniformly distributed duration in [lo, hi). When the
// window is empty it returns lo.
func Duration(src Source, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(src.Int64N(int64(hi-lo)))
}
