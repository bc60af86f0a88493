package dynamo

import (
	"cmp"
	"math"

	"golang.org/x/exp/slices"
)

// Setpoint switches the reference to Value at time At.
type Setpoint struct {
	At    float64
	Value float64
}

// Reference is a piecewise-constant setpoint schedule. Before the first
// setpoint the reference is zero.
type Reference []Setpoint

func UnitStep() Reference {
	return Reference{{At: 0, Value: 1}}
}

func (r Reference) validate() error {
	for _, sp := range r {
		if math.IsNaN(sp.At) || math.IsNaN(sp.Value) || math.IsInf(sp.Value, 0) {
			return boundsError("setpoint %+v", sp)
		}
	}
	return nil
}

// Sorted returns the schedule ordered by switch time.
func (r Reference) Sorted() Reference {
	c := make(Reference, len(r))
	copy(c, r)
	slices.SortStableFunc(c, func(a, b Setpoint) int { return cmp.Compare(a.At, b.At) })
	return c
}

// Value returns the reference at time t. r must be sorted.
func (r Reference) Value(t float64) float64 {
	v := 0.0
	for _, sp := range r {
		if sp.At > t {
			break
		}
		v = sp.Value
	}
	return v
}

// ManualInterval hands the loop to the operator on [From, Until). The
// requested signal is held at Signal, or at its last value when Signal
// is NaN.
type ManualInterval struct {
	From   float64
	Until  float64
	Signal float64
}

func (m ManualInterval) Contains(t float64) bool {
	return t >= m.From && t < m.Until
}

func (m ManualInterval) validate() error {
	if math.IsNaN(m.From) || math.IsNaN(m.Until) || m.Until < m.From {
		return boundsError("manual interval [%g, %g)", m.From, m.Until)
	}
	return nil
}

func manualAt(intervals []ManualInterval, t float64) (ManualInterval, bool) {
	for _, m := range intervals {
		if m.Contains(t) {
			return m, true
		}
	}
	return ManualInterval{}, false
}
