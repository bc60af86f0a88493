package control

import (
	"fmt"
	"math"
)

// Tuning parameter names used by Params and SetParam.
const (
	ParamGain           = "gain"
	ParamDerivativeTime = "derivative_time"
	ParamFilterTime     = "filter_time"
	ParamIntegralTime   = "integral_time"
	ParamResetTime      = "reset_time"
)

// Params returns the tuning parameters for live adjustment.
func (p *PID) Params() map[string]float64 {
	return map[string]float64{
		ParamGain:           p.Gain,
		ParamDerivativeTime: p.DerivativeTime,
		ParamFilterTime:     p.FilterTime,
		ParamIntegralTime:   p.IntegralTime,
		ParamResetTime:      p.ResetTime,
	}
}

// SetParam adjusts a single tuning parameter. Out of domain values are
// rejected and leave the controller unchanged.
func (p *PID) SetParam(name string, value float64) error {
	next := *p
	switch name {
	case ParamGain:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return &TuningError{Param: name, Value: value}
		}
		next.Gain = value
	case ParamDerivativeTime:
		next.DerivativeTime = value
	case ParamFilterTime:
		next.FilterTime = value
	case ParamIntegralTime:
		next.IntegralTime = value
	case ParamResetTime:
		next.ResetTime = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}
