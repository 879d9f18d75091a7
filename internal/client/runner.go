package client

import (
	"context"
	"math/rand"

	"github.com/san-kum/stepbridge/internal/bridge"
)

// StartRange bounds the random reset of an episode. Angles are degrees.
type StartRange struct {
	X, Y, Z    [2]float64
	Pitch, Yaw [2]float64
}

func DefaultStartRange() StartRange {
	return StartRange{
		X:     [2]float64{-5, 5},
		Y:     [2]float64{5, 20},
		Z:     [2]float64{-5.5, 5.5},
		Pitch: [2]float64{-2.5, 2.5},
		Yaw:   [2]float64{-2.5, 2.5},
	}
}

func (r StartRange) Sample(rng *rand.Rand) bridge.Reset {
	u := func(b [2]float64) float64 { return b[0] + rng.Float64()*(b[1]-b[0]) }
	return bridge.Reset{X: u(r.X), Y: u(r.Y), Z: u(r.Z), Pitch: u(r.Pitch), Yaw: u(r.Yaw)}
}

type Episode struct {
	Start     bridge.Reset
	Steps     int
	Outcome   Outcome
	Final     bridge.StateVector
	MinHeight float64
}

// StepFunc observes each apply round trip of an episode.
type StepFunc func(step int, action bridge.Apply, s bridge.StateVector)

// RunEpisode resets to start and flies pilot until limits end the episode
// or ctx is done. A pilot with a Reset method is reset along with the body.
func RunEpisode(ctx context.Context, c *Client, start bridge.Reset, pilot Pilot, limits Limits, onStep StepFunc) (Episode, error) {
	ep := Episode{Start: start, Outcome: Running}

	s, err := c.Send(bridge.Command{Mode: bridge.ModeReset, Reset: start})
	if err != nil {
		return ep, err
	}
	ep.Final, ep.MinHeight = s, s[bridge.DY]
	if r, ok := pilot.(interface{ Reset() }); ok {
		r.Reset()
	}

	for ep.Outcome == Running {
		if err := ctx.Err(); err != nil {
			return ep, err
		}
		action := pilot.Act(s)
		s, err = c.Apply(action)
		if err != nil {
			return ep, err
		}
		ep.Steps++
		ep.Final = s
		if s[bridge.DY] < ep.MinHeight {
			ep.MinHeight = s[bridge.DY]
		}
		if onStep != nil {
			onStep(ep.Steps, action, s)
		}
		ep.Outcome = limits.Judge(s, ep.Steps)
	}
	return ep, nil
}
