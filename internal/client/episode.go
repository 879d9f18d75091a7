package client

import (
	"math"

	"github.com/san-kum/stepbridge/internal/bridge"
)

type Outcome int

const (
	Running Outcome = iota
	Success
	Crash
	MissedZone
	Tilted
	Spin
	OutOfBounds
	CeilingHit
	TimeLimit
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Success:
		return "success"
	case Crash:
		return "crash"
	case MissedZone:
		return "missed-zone"
	case Tilted:
		return "tilted"
	case Spin:
		return "spin"
	case OutOfBounds:
		return "out-of-bounds"
	case CeilingHit:
		return "ceiling-hit"
	case TimeLimit:
		return "time-limit"
	default:
		return "unknown"
	}
}

// Limits are the termination thresholds of an episode. Distances are in
// meters, speeds in m/s, spin in rad/s; tilt limits are the Y component of
// the body's up axis.
type Limits struct {
	Ceiling      float64
	CeilingClimb float64
	Bounds       float64
	MinUp        float64
	MaxSpin      float64

	TouchdownHeight float64
	ZoneRadius      float64
	LandVertical    float64
	LandHorizontal  float64
	LandUp          float64
	LandSpin        float64

	MaxSteps int
}

func DefaultLimits() Limits {
	return Limits{
		Ceiling:         60,
		CeilingClimb:    0.3,
		Bounds:          35,
		MinUp:           0.35,
		MaxSpin:         8,
		TouchdownHeight: 1.7,
		ZoneRadius:      8.5,
		LandVertical:    3.5,
		LandHorizontal:  3,
		LandUp:          0.85,
		LandSpin:        5,
		MaxSteps:        1000,
	}
}

// Judge classifies the state reached after step steps of an episode.
func (l Limits) Judge(s bridge.StateVector, step int) Outcome {
	dy := s[bridge.DY]
	vy := s[bridge.VY]
	distH := math.Hypot(s[bridge.DX], s[bridge.DZ])
	speedH := math.Hypot(s[bridge.VX], s[bridge.VZ])
	w := s.AngularVelocity()
	spin := math.Sqrt(w[0]*w[0] + w[1]*w[1] + w[2]*w[2])
	up := upY(s)

	switch {
	case dy >= l.Ceiling && vy > l.CeilingClimb:
		return CeilingHit
	case math.Abs(s[bridge.DX]) >= l.Bounds || math.Abs(s[bridge.DZ]) >= l.Bounds:
		return OutOfBounds
	case up < l.MinUp:
		return Tilted
	case spin > l.MaxSpin:
		return Spin
	}

	if dy <= l.TouchdownHeight {
		if distH >= l.ZoneRadius {
			return MissedZone
		}
		if math.Abs(vy) <= l.LandVertical && speedH <= l.LandHorizontal && up >= l.LandUp && spin <= l.LandSpin {
			return Success
		}
		return Crash
	}

	if l.MaxSteps > 0 && step >= l.MaxSteps {
		return TimeLimit
	}
	return Running
}

// upY is the world Y component of the body's up axis.
func upY(s bridge.StateVector) float64 {
	qx, qy, qz, qw := s[bridge.QX], s[bridge.QY], s[bridge.QZ], s[bridge.QW]
	n := qx*qx + qy*qy + qz*qz + qw*qw
	if n < 1e-12 {
		return 1
	}
	return 1 - 2*(qx*qx+qz*qz)/n
}
