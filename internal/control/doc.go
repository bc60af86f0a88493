// Package control provides the incremental feedback controller that drives
// a process observable toward a reference value.
//
// [PID] is a proportional-integral-derivative controller in incremental
// ("velocity") form featuring
//
//   - low pass filtering of the process derivative,
//   - automatic reset (anti-windup) on actuator saturation,
//   - derivative on measurement, so setpoint changes never kick,
//   - incremental output for bumpless manual-to-automatic transfer,
//   - a unified gain scaling P, I, and D together, and
//   - support for a varying sample rate.
//
// With f a first-order low-pass filtered copy of the observable y,
// df/dt = (y - f)/Tf, the discrete update over a step dt is
//
//	alpha = dt / (Tf + dt)
//	df    = alpha * (y - f)
//	dy    = y - y_prev
//	dv    = kp * [ dt*((r - y)/Ti + (u - v)/Tt) + (Td/Tf)*(df - dy) - dy ]
//
// where r is the reference, u the realized actuator signal and v the
// requested one. Only f and y_prev are carried across steps.
//
// A term is disabled by setting its time scale to infinity (or Td to
// zero); IEEE-754 division then makes its contribution exactly zero.
//
// # Usage
//
//	pid := control.FromGains(kp, ki, kd, kt)
//	for {
//	    y  = process(dt, u)
//	    v += pid.Step(dt, r, u, v, y)
//	    u  = actuate(dt, v)
//	}
//
// After any stretch of manual control call [PID.ResetTransient] before
// stepping again.
//
// A PID is owned by exactly one loop and is not safe for concurrent use.
package control
