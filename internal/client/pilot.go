package client

import (
	"math"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/control"
)

// Pilot picks the next action from the last state.
type Pilot interface {
	Act(s bridge.StateVector) bridge.Apply
}

type PilotFunc func(s bridge.StateVector) bridge.Apply

func (f PilotFunc) Act(s bridge.StateVector) bridge.Apply { return f(s) }

// Autopilot is a descent controller: a PID loop on vertical speed tracks
// a sink rate that shrinks with height, and the reaction thrusters level
// and damp the body.
type Autopilot struct {
	Hover    float64 // throttle that cancels gravity
	SinkGain float64
	MaxSink  float64
	MinSink  float64
	AttGain  float64
	DampGain float64
	// Dt is the bridge step the vertical loop assumes between actions.
	Dt float64

	vertical *control.PID
}

func NewAutopilot(hover float64) *Autopilot {
	vertical := control.NewPID(0.3, 0.05, 0, 0)
	vertical.IntegralLimit = 2
	return &Autopilot{
		Hover:    hover,
		SinkGain: 0.25,
		MaxSink:  4,
		MinSink:  0.8,
		AttGain:  2,
		DampGain: 0.8,
		Dt:       0.02,
		vertical: vertical,
	}
}

func (a *Autopilot) Act(s bridge.StateVector) bridge.Apply {
	dy, vy := s[bridge.DY], s[bridge.VY]
	a.vertical.Target = -math.Max(a.MinSink, math.Min(a.MaxSink, a.SinkGain*dy))
	thrust := a.Hover + a.vertical.Update(vy, a.Dt)

	w := s.AngularVelocity()
	return bridge.Apply{
		Pitch:  clamp(-a.AttGain*s[bridge.QX]-a.DampGain*w[0], 1),
		Yaw:    clamp(-a.DampGain*w[1], 1),
		Thrust: math.Max(0, math.Min(1, thrust)),
		Roll:   clamp(-a.AttGain*s[bridge.QZ]-a.DampGain*w[2], 1),
	}
}

// Reset clears the vertical loop between episodes.
func (a *Autopilot) Reset() { a.vertical.Reset() }

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
