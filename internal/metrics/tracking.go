package metrics

import (
	"math"

	"github.com/san-kum/helm/internal/dynamo"
)

// Tracking integrates a penalty of the tracking error r - y over time.
// Lost samples contribute nothing.
type Tracking struct {
	name    string
	penalty func(e float64) float64
	sum     float64
}

// NewIAE integrates the absolute error.
func NewIAE() *Tracking {
	return &Tracking{name: "iae", penalty: math.Abs}
}

// NewISE integrates the squared error.
func NewISE() *Tracking {
	return &Tracking{name: "ise", penalty: func(e float64) float64 { return e * e }}
}

func (t *Tracking) Name() string {
	return t.name
}

func (t *Tracking) Observe(s dynamo.Sample) {
	if math.IsNaN(s.Observable) {
		return
	}
	t.sum += t.penalty(s.Reference-s.Observable) * s.Dt
}

func (t *Tracking) Value() float64 {
	return t.sum
}

func (t *Tracking) Reset() {
	t.sum = 0
}

// Overshoot is the largest excursion past the most recent setpoint,
// as a fraction of that setpoint change.
type Overshoot struct {
	from, to float64
	peak     float64
	started  bool
}

func NewOvershoot() *Overshoot {
	return &Overshoot{}
}

func (o *Overshoot) Name() string {
	return "overshoot"
}

func (o *Overshoot) Observe(s dynamo.Sample) {
	if !o.started || s.Reference != o.to {
		o.from, o.to = o.to, s.Reference
		o.peak = 0
		o.started = true
	}
	step := o.to - o.from
	if step == 0 || math.IsNaN(s.Observable) {
		return
	}
	if excess := (s.Observable - o.to) / step; excess > o.peak {
		o.peak = excess
	}
}

func (o *Overshoot) Value() float64 {
	return o.peak
}

func (o *Overshoot) Reset() {
	*o = Overshoot{}
}
