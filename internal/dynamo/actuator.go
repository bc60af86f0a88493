package dynamo

import "math"

// Actuator turns the requested signal into the signal the plant actually
// receives. Min and Max saturate it; Rate bounds how fast it may move per
// unit time.
type Actuator struct {
	Min  float64
	Max  float64
	Rate float64
}

// Unlimited returns an actuator that realizes any request instantly.
func Unlimited() Actuator {
	return Actuator{Min: math.Inf(-1), Max: math.Inf(1), Rate: math.Inf(1)}
}

func (a Actuator) validate() error {
	if math.IsNaN(a.Min) || math.IsNaN(a.Max) || a.Min > a.Max ||
		math.IsInf(a.Min, 1) || math.IsInf(a.Max, -1) {
		return boundsError("actuator range [%g, %g]", a.Min, a.Max)
	}
	if !(a.Rate > 0) {
		return boundsError("actuator rate %g must be positive", a.Rate)
	}
	return nil
}

// Actuate moves from current toward requested over dt.
func (a Actuator) Actuate(dt, requested, current float64) float64 {
	u := requested
	if !math.IsInf(a.Rate, 1) {
		step := a.Rate * dt
		u = math.Max(current-step, math.Min(current+step, u))
	}
	return math.Max(a.Min, math.Min(a.Max, u))
}

// Saturated reports whether the realized signal differs from the request.
func Saturated(requested, actual float64) bool {
	return math.Abs(requested-actual) > 1e-12*math.Max(1, math.Abs(requested))
}
