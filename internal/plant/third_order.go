package plant

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/helm/internal/dynamo"
)

var (
	DefaultA = [3]float64{1, 3, 3}
	DefaultB = 1.0
)

type ThirdOrder struct {
	// A holds a0, a1, a2.
	A [3]float64
	// B is b0.
	B float64
}

func NewThirdOrder() *ThirdOrder {
	return &ThirdOrder{A: DefaultA, B: DefaultB}
}

func (p *ThirdOrder) StateDim() int   { return 3 }
func (p *ThirdOrder) ControlDim() int { return 1 }

func (p *ThirdOrder) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	in := 0.0
	if len(u) > 0 {
		in = u[0]
	}
	return dynamo.State{
		x[1],
		x[2],
		-p.A[0]*x[0] - p.A[1]*x[1] - p.A[2]*x[2] + p.B*in,
	}
}

func (p *ThirdOrder) Observe(x dynamo.State) float64 {
	return x[0]
}

func (p *ThirdOrder) Matrices() (*mat.Dense, *mat.Dense) {
	a := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		0, 0, 1,
		-p.A[0], -p.A[1], -p.A[2],
	})
	b := mat.NewDense(3, 1, []float64{0, 0, p.B})
	return a, b
}

// Advance takes one semi-implicit Euler step of size h under input u,
// solving (I - hA) x(t+h) = x(t) + h B u with the closed form inverse.
func (p *ThirdOrder) Advance(h, u float64, x dynamo.State) dynamo.State {
	a0, a1, a2 := p.A[0], p.A[1], p.A[2]

	r0, r1, r2 := x[0], x[1], x[2]+h*p.B*u
	det := h*(h*(a0*h+a1)+a2) + 1

	return dynamo.State{
		((h*(a2+a1*h)+1)*r0 + h*(a2*h+1)*r1 + h*h*r2) / det,
		(-a0*h*h*r0 + (a2*h+1)*r1 + h*r2) / det,
		(-a0*h*r0 - h*(a1+a0*h)*r1 + r2) / det,
	}
}

// DCGain is the steady-state output per unit input, b0/a0.
func (p *ThirdOrder) DCGain() float64 {
	return p.B / p.A[0]
}

func (p *ThirdOrder) Validate() error {
	for _, c := range append(p.A[:], p.B) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: plant coefficients a=%v b=%g", dynamo.ErrParameterBounds, p.A, p.B)
		}
	}
	if p.B == 0 {
		return fmt.Errorf("%w: b0 must be non-zero", dynamo.ErrParameterBounds)
	}
	return nil
}

// Stable applies the Routh-Hurwitz criterion to the open-loop plant.
func (p *ThirdOrder) Stable() bool {
	a0, a1, a2 := p.A[0], p.A[1], p.A[2]
	return a0 > 0 && a1 > 0 && a2 > 0 && a2*a1 > a0
}

// Stepper adapts Advance to the dynamo.Integrator interface.
type Stepper struct{}

func (Stepper) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	p, ok := dyn.(*ThirdOrder)
	if !ok {
		panic(fmt.Sprintf("plant: closed form stepper cannot advance %T", dyn))
	}
	in := 0.0
	if len(u) > 0 {
		in = u[0]
	}
	return p.Advance(dt, in, x)
}
