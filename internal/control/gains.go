package control

import "math"

// DefaultFilterRatio is Td/Tf used by FromGains. Åström and Murray
// suggest values between 2 and 20.
const DefaultFilterRatio = 10

// FromGains returns a controller tuned from positional gains and ready to
// step. It panics if the gains do not map onto a valid tuning.
func FromGains(kp, ki, kd, kt float64) *PID {
	p := new(PID).ResetTuning()
	if err := p.SetGains(kp, ki, kd, kt); err != nil {
		panic(err)
	}
	return p.ResetTransient()
}

// SetGains converts the commonly quoted positional gains into time
// scales: kp is the proportional gain, ki the integral gain, kd the
// derivative gain and kt the automatic reset gain. A zero ki or kt
// disables that action, a zero kd disables derivative action and
// filtering. Gains whose signs disagree with kp are rejected and leave
// the controller unchanged. Transient state is untouched.
func (p *PID) SetGains(kp, ki, kd, kt float64) error {
	if kp == 0 || math.IsNaN(kp) || math.IsInf(kp, 0) {
		return &TuningError{Param: ParamGain, Value: kp}
	}
	next := *p
	next.Gain = kp
	next.DerivativeTime = kd / kp
	next.FilterTime = math.Inf(1)
	if next.DerivativeTime > 0 {
		next.FilterTime = next.DerivativeTime / DefaultFilterRatio
	}
	next.IntegralTime = timeScale(kp, ki)
	next.ResetTime = timeScale(kp, kt)
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

// Gains reports the positional gains equivalent to the current tuning.
func (p *PID) Gains() (kp, ki, kd, kt float64) {
	return p.Gain, p.Gain / p.IntegralTime, p.Gain * p.DerivativeTime, p.Gain / p.ResetTime
}

func timeScale(kp, k float64) float64 {
	if k == 0 {
		return math.Inf(1)
	}
	return kp / k
}
