package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/sim"
)

func stepWith(cmd bridge.Command, s bridge.StateVector) sim.Step {
	return sim.Step{Decoded: true, Command: cmd, State: s}
}

func level(dy float64, vel [3]float64) bridge.StateVector {
	return bridge.NewStateVector([3]float64{0, dy, 0}, vel, [3]float64{}, [4]float64{0, 0, 0, 1})
}

func TestControlEffortIgnoresResets(t *testing.T) {
	m := NewControlEffort()
	m.Observe(stepWith(bridge.NewReset(0, 10, 0, 45, 90), level(10, [3]float64{})))
	if m.Value() != 0 {
		t.Errorf("reset counted as effort: %f", m.Value())
	}

	m.Observe(stepWith(bridge.NewApply(1, -1, 0.5, 0), level(10, [3]float64{})))
	m.Observe(stepWith(bridge.NewApply(0, 0, 0.5, 0), level(10, [3]float64{})))
	if want := (2.5 + 0.5) / 2; math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMinHeightAndMaxSpeed(t *testing.T) {
	minH, maxV := NewMinHeight(), NewMaxSpeed()
	steps := []sim.Step{
		stepWith(bridge.NewApply(0, 0, 0, 0), level(10, [3]float64{0, -1, 0})),
		stepWith(bridge.NewApply(0, 0, 0, 0), level(4, [3]float64{3, -4, 0})),
		stepWith(bridge.NewApply(0, 0, 1, 0), level(6, [3]float64{0, 2, 0})),
	}
	for _, s := range steps {
		minH.Observe(s)
		maxV.Observe(s)
	}
	if minH.Value() != 4 {
		t.Errorf("min height: expected 4, got %f", minH.Value())
	}
	if math.Abs(maxV.Value()-5) > 1e-12 {
		t.Errorf("max speed: expected 5, got %f", maxV.Value())
	}
}

func TestTilt(t *testing.T) {
	tests := []struct {
		name string
		rot  [4]float64
		want float64
	}{
		{"level", [4]float64{0, 0, 0, 1}, 0},
		{"yaw only", [4]float64{0, math.Sin(math.Pi / 4), 0, math.Cos(math.Pi / 4)}, 0},
		{"pitched 90", [4]float64{math.Sin(math.Pi / 4), 0, 0, math.Cos(math.Pi / 4)}, 90},
		{"upside down", [4]float64{1, 0, 0, 0}, 180},
		{"zero quaternion", [4]float64{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := bridge.NewStateVector([3]float64{}, [3]float64{}, [3]float64{}, tt.rot)
			if got := Tilt(s); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestUpright(t *testing.T) {
	m := NewUpright(15)
	if m.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %f", m.Value())
	}
	tipped := bridge.NewStateVector([3]float64{}, [3]float64{}, [3]float64{}, [4]float64{math.Sin(math.Pi / 4), 0, 0, math.Cos(math.Pi / 4)})

	m.Observe(stepWith(bridge.NewApply(0, 0, 0, 0), level(1, [3]float64{})))
	m.Observe(stepWith(bridge.NewApply(0, 0, 0, 0), tipped))
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestStandardNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	for _, name := range []string{"control_effort", "min_height", "max_speed", "upright"} {
		if !seen[name] {
			t.Errorf("missing metric %s", name)
		}
	}
}
