// Package rocket is the simulation backend behind the bridge: a 3D rigid
// body lander with one main engine and reaction control on three axes.
//
// [Body] implements [dynamo.System] over a 13-dimensional state and is
// integrated by any [dynamo.Integrator]. [Lander] wraps a Body with the
// command semantics the controller expects:
//
//   - reset: place the body, zero its motion, pitch/yaw in degrees, roll 0
//   - apply: throttle clamped to [0,1] times ThrustPower along body up,
//     pitch/yaw/roll torques scaled by RCSPower (roll additionally by RollScale)
//
// Positions are reported from a body-fixed sensor point relative to a
// target, with Y as the vertical axis.
package rocket
