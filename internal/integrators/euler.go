package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/stepbridge/internal/dynamo"
)

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	return x.AddScaled(dyn.Derive(x, u, t), dt)
}

// Midpoint is the explicit second-order Runge-Kutta method.
type Midpoint struct{}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	half := x.AddScaled(dyn.Derive(x, u, t), dt*0.5)
	return x.AddScaled(dyn.Derive(half, u, t+dt*0.5), dt)
}

var registry = map[string]func() dynamo.Integrator{
	"euler":    func() dynamo.Integrator { return NewEuler() },
	"midpoint": func() dynamo.Integrator { return NewMidpoint() },
	"rk4":      func() dynamo.Integrator { return NewRK4() },
}

// New returns a fresh integrator by name.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
