package integrators

import "github.com/san-kum/helm/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. The control input
// is held constant across the step, matching a zero-order-hold actuator.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) stage(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, h float64, prev dynamo.State, dst dynamo.State) {
	for i := range x {
		r.scratch[i] = x[i] + h*prev[i]
	}
	copy(dst, dyn.Derive(r.scratch, u, t+h))
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k[0], dyn.Derive(x, u, t))
	r.stage(dyn, x, u, t, dt/2, r.k[0], r.k[1])
	r.stage(dyn, x, u, t, dt/2, r.k[1], r.k[2])
	r.stage(dyn, x, u, t, dt, r.k[2], r.k[3])

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}

	return result
}
