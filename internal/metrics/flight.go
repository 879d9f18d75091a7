package metrics

import (
	"math"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/sim"
)

// MinHeight tracks the lowest sensor height above the target.
type MinHeight struct {
	name    string
	min     float64
	samples int
}

func NewMinHeight() *MinHeight {
	return &MinHeight{name: "min_height"}
}

func (m *MinHeight) Name() string { return m.name }

func (m *MinHeight) Observe(s sim.Step) {
	h := s.State[bridge.DY]
	if m.samples == 0 || h < m.min {
		m.min = h
	}
	m.samples++
}

func (m *MinHeight) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinHeight) Reset() {
	m.min = 0
	m.samples = 0
}

// MaxSpeed tracks the largest linear speed seen.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(s sim.Step) {
	v := s.State.Velocity()
	m.max = math.Max(m.max, math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]))
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }

// Standard returns the metrics a serve session records by default.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewControlEffort(),
		NewMinHeight(),
		NewMaxSpeed(),
		NewUpright(15),
	}
}
