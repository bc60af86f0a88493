package control

import "math"

// PID holds tuning parameters and the transient state of an incremental
// PID controller.
//
// Gain has units of u0/y0 where u0 and y0 are the natural actuator and
// observable units. The time scales share whatever time unit the caller
// uses for dt.
type PID struct {
	// Gain scales the P, I, and D actions together.
	Gain float64
	// DerivativeTime governs derivative action. Zero disables it.
	DerivativeTime float64
	// FilterTime low-pass filters the observable before differentiating.
	// Infinity disables filtering.
	FilterTime float64
	// IntegralTime governs integral action. Infinity disables it.
	IntegralTime float64
	// ResetTime governs automatic reset. Infinity disables it.
	ResetTime float64

	lastObservable     float64
	filteredObservable float64
}

// NewPID returns a controller with default tuning that is ready to step.
func NewPID() *PID {
	return new(PID).ResetTuning().ResetTransient()
}

// ResetTuning restores unit gain and disables filtering, integral,
// derivative and automatic reset action. Transient state is untouched.
func (p *PID) ResetTuning() *PID {
	p.Gain = 1
	p.DerivativeTime = 0
	p.FilterTime = math.Inf(1)
	p.IntegralTime = math.Inf(1)
	p.ResetTime = math.Inf(1)
	return p
}

// ResetTransient forgets the tracked observable so the next valid sample
// starts the controller without a kick. Call it before the first Step and
// after every period of manual control. Tuning is untouched.
//
// It panics if the tuning parameters are out of domain.
func (p *PID) ResetTransient() *PID {
	if err := p.Validate(); err != nil {
		panic(err)
	}
	p.filteredObservable = math.NaN()
	return p
}

// Approach prepares the controller to take over automatic control.
func (p *PID) Approach() {
	p.ResetTransient()
}

// Validate reports whether the tuning parameters admit a Step.
func (p *PID) Validate() error {
	switch {
	case !(p.DerivativeTime >= 0):
		return &TuningError{Param: ParamDerivativeTime, Value: p.DerivativeTime}
	case !(p.FilterTime > 0):
		return &TuningError{Param: ParamFilterTime, Value: p.FilterTime}
	case !(p.IntegralTime > 0):
		return &TuningError{Param: ParamIntegralTime, Value: p.IntegralTime}
	case !(p.ResetTime > 0):
		return &TuningError{Param: ParamResetTime, Value: p.ResetTime}
	}
	return nil
}

// Step returns the change to apply to the requested control signal.
//
// dt is the time since the previous samples, reference the setpoint,
// actual the actuator signal currently realized and requested the signal
// currently requested. A NaN observable marks a missing sample: nothing
// is updated and the increment is zero.
//
// dt is not validated; a negative value yields a defined but meaningless
// increment.
func (p *PID) Step(dt, reference, actual, requested, observable float64) float64 {
	if math.IsNaN(observable) {
		return 0
	}

	if math.IsNaN(p.filteredObservable) {
		p.lastObservable = observable
		p.filteredObservable = observable
	}

	alpha := dt / (p.FilterTime + dt)
	df := alpha * (observable - p.filteredObservable)
	dy := observable - p.lastObservable

	dv := (reference - observable) / p.IntegralTime
	dv += (actual - requested) / p.ResetTime
	dv *= dt
	dv += (p.DerivativeTime / p.FilterTime) * (df - dy)
	dv -= dy // reference derivative taken as zero
	dv *= p.Gain

	p.lastObservable = observable
	p.filteredObservable += df

	return dv
}

// Filtered returns the filtered observable and whether a valid sample has
// been seen since the last ResetTransient.
func (p *PID) Filtered() (float64, bool) {
	return p.filteredObservable, !math.IsNaN(p.filteredObservable)
}
