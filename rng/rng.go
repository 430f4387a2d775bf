// Package rng provides the explicit random streams used by the simulation.
//
// Every World and every evolution run owns a Source. Child streams are derived
// with Split so that work fanned out to goroutines stays reproducible for a
// given root seed, independent of scheduling.
package rng

import "math/rand"

// Source is a seeded random stream. It is not safe for concurrent use.
type Source struct {
	r *rand.Rand
}

// New creates a stream from a seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform draw in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Uniform returns a uniform draw in [min, max).
func (s *Source) Uniform(min, max float64) float64 {
	return min + s.r.Float64()*(max-min)
}

// Intn returns a uniform integer in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.r.Intn(n)
}

// Gaussian returns a normal draw with the given mean and standard deviation.
func (s *Source) Gaussian(mean, std float64) float64 {
	return mean + s.r.NormFloat64()*std
}

// Seed draws a seed suitable for New.
func (s *Source) Seed() int64 {
	return s.r.Int63()
}

// Split derives an independent child stream.
func (s *Source) Split() *Source {
	return New(s.Seed())
}
