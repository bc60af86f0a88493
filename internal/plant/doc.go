// Package plant provides the reference process used to exercise the
// controller.
//
// [ThirdOrder] models the transfer function
//
//	y(s)/u(s) = b0 / (s^3 + a2 s^2 + a1 s + a0)
//
// in companion (controllable canonical) form. It implements
// [dynamo.System] for the explicit integrators, [dynamo.Linear] for
// implicit ones and offers [ThirdOrder.Advance], a closed form
// semi-implicit Euler step.
//
// The default coefficients reproduce the 1/(s+1)^3 example of Åström and
// Murray, Figure 10.2.
package plant
