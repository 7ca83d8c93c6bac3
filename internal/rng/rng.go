// Package rng provides the seeded random source used to sample initial
// conditions.
//
// A [Source] is deterministic: the same seed always yields the same stream of
// deviates. Each simulation owns its own Source; there is no package-level
// generator.
package rng

import (
	"math"
	"math/rand"
)

type Source struct {
	seed int64
	r    *rand.Rand

	// Box-Muller produces deviates in pairs; the cosine branch is kept
	// for the next Normal call.
	spare    float64
	hasSpare bool
}

func New(seed int64) *Source {
	return &Source{seed: seed, r: rand.New(rand.NewSource(seed))}
}

func (s *Source) Seed() int64 { return s.seed }

// Reseed restarts the stream as if the Source had been created with seed.
func (s *Source) Reseed(seed int64) {
	s.seed = seed
	s.r = rand.New(rand.NewSource(seed))
	s.spare = 0
	s.hasSpare = false
}

// Uniform returns a value drawn from U[a, b). Callers ensure a <= b.
func (s *Source) Uniform(a, b float64) float64 {
	return (b-a)*s.r.Float64() + a
}

// UniformSym is shorthand for Uniform(-a, a).
func (s *Source) UniformSym(a float64) float64 {
	return s.Uniform(-a, a)
}

// Normal returns a normally distributed value using the Box-Muller transform.
func (s *Source) Normal(mean, stddev float64) float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare*stddev + mean
	}

	// u1 in (0, 1] keeps the log finite
	u1 := 1 - s.r.Float64()
	u2 := s.r.Float64()

	mag := math.Sqrt(-2 * math.Log(u1))
	sin, cos := math.Sincos(2 * math.Pi * u2)

	s.spare = mag * cos
	s.hasSpare = true

	return mag*sin*stddev + mean
}
