package dynamo

import (
	"math"
	"math/rand"
)

// Sampling perturbs the loop timing and measurement stream. Jitter
// randomizes each step to dt*(1 ± Jitter); DropProbability replaces the
// observable with NaN, i.e. a lost sample.
type Sampling struct {
	Jitter          float64
	DropProbability float64
}

func (s Sampling) validate() error {
	if !(s.Jitter >= 0 && s.Jitter < 1) {
		return boundsError("jitter %g must be in [0, 1)", s.Jitter)
	}
	if !(s.DropProbability >= 0 && s.DropProbability < 1) {
		return boundsError("drop probability %g must be in [0, 1)", s.DropProbability)
	}
	return nil
}

type sampler struct {
	cfg Sampling
	rng *rand.Rand
}

func newSampler(cfg Sampling, seed int64) *sampler {
	return &sampler{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

func (s *sampler) step(dt float64) float64 {
	if s.cfg.Jitter == 0 {
		return dt
	}
	return dt * (1 + s.cfg.Jitter*(2*s.rng.Float64()-1))
}

func (s *sampler) measure(y float64) float64 {
	if s.cfg.DropProbability > 0 && s.rng.Float64() < s.cfg.DropProbability {
		return math.NaN()
	}
	return y
}
