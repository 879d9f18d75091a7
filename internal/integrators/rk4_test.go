package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/stepbridge/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int   { return 2 }
func (s *simpleDynamics) ControlDim() int { return 0 }

// forced is x'' = u, a body pushed by a constant force.
type forced struct{}

func (f *forced) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], u[0]}
}

func (f *forced) StateDim() int   { return 2 }
func (f *forced) ControlDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	u := dynamo.Control{}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestConstantForce(t *testing.T) {
	// x(t) = a t^2 / 2 is integrated exactly by second and fourth order methods.
	for _, name := range []string{"midpoint", "rk4"} {
		t.Run(name, func(t *testing.T) {
			integ, err := New(name)
			if err != nil {
				t.Fatal(err)
			}
			x := dynamo.State{0, 0}
			u := dynamo.Control{2.0}
			dt := 0.02
			for i := 0; i < 50; i++ {
				x = integ.Step(&forced{}, x, u, float64(i)*dt, dt)
			}
			if math.Abs(x[0]-1.0) > 1e-9 {
				t.Errorf("position: got %.9f, want 1", x[0])
			}
			if math.Abs(x[1]-2.0) > 1e-9 {
				t.Errorf("velocity: got %.9f, want 2", x[1])
			}
		})
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	for _, name := range Names() {
		integ, _ := New(name)
		x := dynamo.State{1, 0}
		integ.Step(&simpleDynamics{}, x, nil, 0, 0.1)
		if x[0] != 1 || x[1] != 0 {
			t.Errorf("%s mutated its input: %v", name, x)
		}
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("verlet9"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &simpleDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}
