package dynamo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

// System is a plant governed by dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Observable extracts the measured process output from the plant state.
type Observable interface {
	Observe(x State) float64
}

// Linear systems expose dX/dt = A X + B u for implicit integration.
type Linear interface {
	Matrices() (a *mat.Dense, b *mat.Dense)
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Controller computes the incremental change to the requested signal.
type Controller interface {
	Step(dt, reference, actual, requested, observable float64) float64
}

// Approacher is implemented by controllers that need their transient
// state reset before taking over automatic control.
type Approacher interface {
	Approach()
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

// Mode tells whether the controller or the operator drives the request.
type Mode int

const (
	Automatic Mode = iota
	Manual
)

func (m Mode) String() string {
	if m == Manual {
		return "manual"
	}
	return "auto"
}

// Sample is one recorded loop iteration.
type Sample struct {
	Time       float64
	Dt         float64
	Reference  float64
	Observable float64
	Requested  float64
	Actual     float64
	Increment  float64
	Mode       Mode
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	Reference     Reference
	Actuator      Actuator
	Manual        []ManualInterval
	Sampling      Sampling
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		Reference:     UnitStep(),
		Actuator:      Unlimited(),
		ValidateState: true,
	}
}

// Validate checks the loop timing, actuator, schedules and sampling.
func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 1) {
		return boundsError("dt must be positive, got %f", c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 1) {
		return boundsError("duration must be positive, got %f", c.Duration)
	}
	if err := c.Actuator.validate(); err != nil {
		return err
	}
	if err := c.Reference.validate(); err != nil {
		return err
	}
	for _, m := range c.Manual {
		if err := m.validate(); err != nil {
			return err
		}
	}
	return c.Sampling.validate()
}

type Result struct {
	States     []State
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Series returns one field of every sample.
func (r *Result) Series(field func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = field(s)
	}
	return out
}
