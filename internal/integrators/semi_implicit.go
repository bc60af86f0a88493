package integrators

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/helm/internal/dynamo"
)

// SemiImplicit advances linear systems with backward Euler,
//
//	(I - h A) x(t+h) = x(t) + h B u(t),
//
// which stays stable for any step size on a stable plant. Systems that
// are not [dynamo.Linear] fall back to forward Euler.
type SemiImplicit struct {
	fallback Euler
}

func NewSemiImplicit() *SemiImplicit {
	return &SemiImplicit{}
}

func (s *SemiImplicit) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	lin, ok := dyn.(dynamo.Linear)
	if !ok {
		return s.fallback.Step(dyn, x, u, t, dt)
	}

	a, b := lin.Matrices()
	n := len(x)

	var lhs mat.Dense
	lhs.Scale(-dt, a)
	for i := 0; i < n; i++ {
		lhs.Set(i, i, lhs.At(i, i)+1)
	}

	rhs := mat.NewVecDense(n, x.Clone())
	if len(u) > 0 {
		var bu mat.VecDense
		bu.MulVec(b, mat.NewVecDense(len(u), append([]float64(nil), u...)))
		rhs.AddScaledVec(rhs, dt, &bu)
	}

	var next mat.VecDense
	if err := next.SolveVec(&lhs, rhs); err != nil {
		// (I - hA) is singular when 1/h is an eigenvalue of A
		return s.fallback.Step(dyn, x, u, t, dt)
	}

	result := make(dynamo.State, n)
	for i := range result {
		result[i] = next.AtVec(i)
	}
	return result
}
