package metrics

import "github.com/san-kum/helm/internal/dynamo"

// Saturation is the fraction of loop time during which the actuator could
// not realize the requested signal.
type Saturation struct {
	name      string
	saturated float64
	total     float64
}

func NewSaturation() *Saturation {
	return &Saturation{
		name: "saturation",
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(sample dynamo.Sample) {
	s.total += sample.Dt
	if dynamo.Saturated(sample.Requested, sample.Actual) {
		s.saturated += sample.Dt
	}
}

func (s *Saturation) Value() float64 {
	if s.total == 0 {
		return 0
	}
	return s.saturated / s.total
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.total = 0
}
