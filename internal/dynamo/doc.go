// Package dynamo provides the numerical primitives the lander backend is
// built on.
//
//   - [State]: flat vector holding the rigid body state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [Normalizer]: post-step constraint projection (unit quaternions)
//
// # Example
//
//	body := rocket.NewBody(rocket.DefaultBodyParams())
//	integ := integrators.NewRK4()
//	x = integ.Step(body, x, u, t, dt)
//	if n, ok := dynamo.System(body).(dynamo.Normalizer); ok {
//	    x = n.Normalize(x)
//	}
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// The bridge only steps a backend from the tick goroutine.
package dynamo
