package sim

import (
	"github.com/san-kum/stepbridge/internal/bridge"
)

// Backend is the physical model the bridge drives. ApplyCommand stages a
// command, Advance moves the model forward by one fixed step and
// ComputeState reads back the target-relative state.
type Backend interface {
	ApplyCommand(cmd bridge.Command)
	Advance(dt float64) error
	ComputeState() bridge.StateVector
}

// Step is everything known about one served request.
type Step struct {
	Index   int
	Episode int
	Time    float64
	Request string
	Decoded bool
	Command bridge.Command
	State   bridge.StateVector
	Err     error
}

type Observer interface {
	OnStep(s Step)
}

type ObserverFunc func(s Step)

func (f ObserverFunc) OnStep(s Step) { f(s) }

type Metric interface {
	Name() string
	Observe(s Step)
	Value() float64
	Reset()
}
