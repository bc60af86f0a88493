// Package dynamo provides the closed-loop simulation primitives used to
// exercise a controller against a plant.
//
//   - [State]: plant state vector
//   - [System]: plant dynamics (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper for a [System]
//   - [Controller]: incremental controller returning a change in request
//   - [Actuator]: saturation and slew limits between request and plant
//   - [Simulator]: runs the loop and records [Sample]s
//
// Each iteration follows the usual incremental pattern
//
//	y  = observe(x)
//	v += ctrl.Step(dt, r, u, v, y)
//	u  = actuator.Actuate(dt, v, u)
//	x  = integrator.Step(plant, x, u, t, dt)
//
// During a [ManualInterval] the controller is not stepped; when automatic
// control resumes the controller is approached again so the transfer is
// bumpless.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel runs use
// [Ensemble] with one simulator (and controller) per scenario.
package dynamo
