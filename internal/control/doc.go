// Package control holds the feedback loops the bundled pilot is built from.
//
//	pid := control.NewPID(0.3, 0.05, 0, -2) // Kp, Ki, Kd, setpoint
//	u := pid.Update(vy, dt)
package control
