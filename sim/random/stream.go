// Package random provides seeded random-variate streams for simulation
// models.
//
// Every draw comes from an explicit Stream, so two runs with the same seed
// produce identical results.
package random

import (
	"math"
	"math/rand"
)

// Stream draws random variates from one deterministic source.
//
// Thread-safety: NOT thread-safe. A stream belongs to one simulation.
type Stream struct {
	rng *rand.Rand
}

// NewStream creates a stream seeded with seed.
func NewStream(seed int64) *Stream {
	return &Stream{rng: rand.New(rand.NewSource(seed))}
}

// FromRand wraps an existing source.
func FromRand(rng *rand.Rand) *Stream {
	return &Stream{rng: rng}
}

// Uniform returns a value uniformly distributed in [a, b).
func (s *Stream) Uniform(a, b float64) float64 {
	if b < a {
		panic("Uniform: upper bound below lower bound")
	}
	return a + (b-a)*s.rng.Float64()
}

// Negexp returns a negative exponentially distributed value with the given
// rate, so the mean is 1/rate.
func (s *Stream) Negexp(rate float64) float64 {
	if rate <= 0 {
		panic("Negexp: rate must be > 0")
	}
	return s.rng.ExpFloat64() / rate
}

// Normal returns a normally distributed value. Negative results are
// possible; callers modelling durations clamp them.
func (s *Stream) Normal(mean, stddev float64) float64 {
	return mean + stddev*s.rng.NormFloat64()
}

// Poisson returns a Poisson distributed count with mean lambda.
func (s *Stream) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	// Knuth's product method; large means use the normal approximation.
	if lambda > 30 {
		n := int(math.Round(s.Normal(lambda, math.Sqrt(lambda))))
		return max(n, 0)
	}
	limit := math.Exp(-lambda)
	k := 0
	for p := s.rng.Float64(); p > limit; p *= s.rng.Float64() {
		k++
	}
	return k
}

// Draw returns true with probability p.
func (s *Stream) Draw(p float64) bool {
	return s.rng.Float64() < p
}

// RandInt returns a uniformly distributed integer in [a, b].
func (s *Stream) RandInt(a, b int) int {
	if b < a {
		panic("RandInt: upper bound below lower bound")
	}
	return a + s.rng.Intn(b-a+1)
}
