package bandit

import (
	"math"
	"math/rand"
)

// rngState wraps a seeded PRNG so a Learner's exploration decisions and
// Box-Muller resampling are reproducible given the same seed and call
// order, useful for tests and for replaying a recorded session.
type rngState struct {
	r *rand.Rand
}

func newRNGState(seed int64) *rngState {
	return &rngState{r: rand.New(rand.NewSource(seed))}
}

func (s *rngState) float64() float64 {
	return s.r.Float64()
}

func (s *rngState) intn(n int) int {
	return s.r.Intn(n)
}

// normal draws one Box-Muller sample from N(mean, variance), clamped to
// [0,1] since all rewards in this engine live in that range.
func (s *rngState) normal(mean, variance float64) float64 {
	if variance < 0 {
		variance = 0
	}
	u1 := s.r.Float64()
	if u1 <= 0 {
		u1 = 1e-12
	}
	u2 := s.r.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	v := mean + z*math.Sqrt(variance)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
