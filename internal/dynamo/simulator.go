package dynamo

import (
	"context"
	"fmt"
	"math"
)

// Simulator closes the loop between a plant, an actuator and an
// incremental controller.
type Simulator struct {
	plant      System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(plant System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		plant:      plant,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run evolves the loop from x0 for cfg.Duration. Each iteration measures
// the plant, lets the controller adjust the requested signal (unless the
// operator holds it), actuates, and advances the plant by one step.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}

	capacity := int(cfg.Duration/cfg.Dt) + 1
	result := &Result{
		States:  make([]State, 0, capacity+1),
		Samples: make([]Sample, 0, capacity),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	sampler := newSampler(cfg.Sampling, cfg.Seed)
	ref := cfg.Reference.Sorted()

	x := x0.Clone()
	t := 0.0
	u := cfg.Actuator.Actuate(0, 0, 0)
	v := u
	automatic := false

	result.States = append(result.States, x.Clone())

	end := cfg.Duration - cfg.Dt*1e-9
	for i := 0; t < end; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		dt := sampler.step(cfg.Dt)
		sample := Sample{
			Time:       t,
			Dt:         dt,
			Reference:  ref.Value(t),
			Observable: sampler.measure(s.observe(x)),
			Mode:       Automatic,
		}

		if m, ok := manualAt(cfg.Manual, t); ok {
			sample.Mode = Manual
			if !math.IsNaN(m.Signal) {
				v = m.Signal
			}
			automatic = false
		} else {
			if !automatic {
				s.approach()
				automatic = true
			}
			sample.Increment = s.controller.Step(dt, sample.Reference, u, v, sample.Observable)
			v += sample.Increment
		}

		u = cfg.Actuator.Actuate(dt, v, u)
		sample.Requested = v
		sample.Actual = u

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sample)
		}

		newX := s.integrator.Step(s.plant, x, Control{u}, t, dt)
		if cfg.ValidateState && !newX.IsValid() {
			err := &SimulationError{Step: i, Time: t, State: newX, Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		t += dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Samples = append(result.Samples, sample)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	return result, nil
}

func (s *Simulator) validateConfig(x0 State, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(x0) != s.plant.StateDim() {
		return fmt.Errorf("%w: initial state has %d entries, plant wants %d", ErrDimensionMismatch, len(x0), s.plant.StateDim())
	}
	if s.plant.ControlDim() != 1 {
		return fmt.Errorf("%w: plant takes %d controls, loop drives 1", ErrDimensionMismatch, s.plant.ControlDim())
	}
	return nil
}

func (s *Simulator) observe(x State) float64 {
	if o, ok := s.plant.(Observable); ok {
		return o.Observe(x)
	}
	return x[0]
}

func (s *Simulator) approach() {
	if a, ok := s.controller.(Approacher); ok {
		a.Approach()
	}
}
