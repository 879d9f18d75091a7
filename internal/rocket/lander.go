package rocket

import (
	"fmt"
	"math"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/dynamo"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Params are the actuator and scene constants of a Lander.
type Params struct {
	ThrustPower float64 // force at full throttle
	RCSPower    float64 // torque per unit pitch/yaw command
	RollScale   float64 // roll torque relative to RCSPower

	// SensorOffset is the body-frame point the reported position is
	// measured from, e.g. the bottom of the landing legs.
	SensorOffset r3.Vec
	Target       r3.Vec

	Ground      bool
	GroundLevel float64
}

func DefaultParams() Params {
	return Params{
		ThrustPower:  20000,
		RCSPower:     1200,
		RollScale:    0.1,
		SensorOffset: r3.Vec{Y: -2},
		Ground:       true,
	}
}

// Lander is the simulation backend driven by the bridge: a rigid body with
// a main engine along its up axis and three-axis reaction control.
// It is not safe for concurrent use; the tick loop owns it.
type Lander struct {
	params Params
	body   *Body
	integ  dynamo.Integrator

	x        dynamo.State
	u        dynamo.Control
	throttle float64
	// hold freezes the body for the step that follows a reset.
	hold  bool
	t     float64
	steps int
}

func NewLander(body *Body, integ dynamo.Integrator, params Params) *Lander {
	l := &Lander{
		params: params,
		body:   body,
		integ:  integ,
		x:      make(dynamo.State, BodyStateDim),
		u:      make(dynamo.Control, BodyControlDim),
	}
	l.x[QW] = 1
	return l
}

func (l *Lander) Params() Params { return l.params }
func (l *Lander) Body() *Body    { return l.body }

// ApplyCommand stages a command for the next Advance.
func (l *Lander) ApplyCommand(cmd bridge.Command) {
	switch cmd.Mode {
	case bridge.ModeReset:
		l.reset(cmd.Reset)
	case bridge.ModeApply:
		l.apply(cmd.Apply)
	}
}

func (l *Lander) reset(r bridge.Reset) {
	for i := range l.x {
		l.x[i] = 0
	}
	l.x[PX], l.x[PY], l.x[PZ] = r.X, r.Y, r.Z
	q := EulerRotation(r.Pitch, r.Yaw)
	l.x[QX], l.x[QY], l.x[QZ], l.x[QW] = q.Imag, q.Jmag, q.Kmag, q.Real

	l.clearInput()
	l.throttle = 0
	l.hold = true
}

func (l *Lander) apply(a bridge.Apply) {
	l.throttle = clamp01(a.Thrust)
	l.u[FX], l.u[FY], l.u[FZ] = 0, l.throttle*l.params.ThrustPower, 0
	l.u[TX] = a.Pitch * l.params.RCSPower
	l.u[TY] = a.Yaw * l.params.RCSPower
	l.u[TZ] = a.Roll * l.params.RCSPower * l.params.RollScale
}

// Advance integrates one fixed step of length dt. Forces staged by
// ApplyCommand act for this step only.
func (l *Lander) Advance(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", dt, dynamo.ErrParameterBounds)
	}
	defer l.clearInput()

	if l.hold {
		l.hold = false
		l.t += dt
		l.steps++
		return nil
	}

	next := l.integ.Step(l.body, l.x, l.u, l.t, dt)
	next = l.body.Normalize(next)
	if !next.IsValid() {
		return &dynamo.SimulationError{Step: l.steps, Time: l.t, State: next, Wrapped: dynamo.ErrInvalidState}
	}
	if l.params.Ground {
		l.contact(next)
	}

	l.x = next
	l.t += dt
	l.steps++
	return nil
}

// contact keeps the sensor point at or above the ground plane and removes
// any velocity into it.
func (l *Lander) contact(x dynamo.State) {
	sensor := l.sensorPosition(x)
	depth := l.params.GroundLevel - sensor.Y
	if depth <= 0 {
		return
	}
	x[PY] += depth
	if x[VY] < 0 {
		x[VY] = 0
	}
}

// ComputeState reports the body relative to the target: horizontal deltas
// are target minus sensor, the vertical one is height of the sensor above
// the target.
func (l *Lander) ComputeState() bridge.StateVector {
	sensor := l.sensorPosition(l.x)
	target := l.params.Target
	return bridge.NewStateVector(
		[3]float64{target.X - sensor.X, sensor.Y - target.Y, target.Z - sensor.Z},
		[3]float64{l.x[VX], l.x[VY], l.x[VZ]},
		[3]float64{l.x[WX], l.x[WY], l.x[WZ]},
		[4]float64{l.x[QX], l.x[QY], l.x[QZ], l.x[QW]},
	)
}

func (l *Lander) sensorPosition(x dynamo.State) r3.Vec {
	pos := r3.Vec{X: x[PX], Y: x[PY], Z: x[PZ]}
	rot := r3.Rotation(unit(rotationOf(x)))
	return r3.Add(pos, rot.Rotate(l.params.SensorOffset))
}

// Throttle is the clamped throttle of the last apply command, cleared by
// a reset.
func (l *Lander) Throttle() float64 { return l.throttle }

// Thrust is the main engine force staged for the next step.
func (l *Lander) Thrust() float64 { return l.u[FY] }

// Torque is the body-frame torque staged for the next step.
func (l *Lander) Torque() r3.Vec { return r3.Vec{X: l.u[TX], Y: l.u[TY], Z: l.u[TZ]} }

func (l *Lander) State() dynamo.State { return l.x.Clone() }
func (l *Lander) Time() float64       { return l.t }
func (l *Lander) Steps() int          { return l.steps }

// Rotation is the current body orientation.
func (l *Lander) Rotation() quat.Number { return rotationOf(l.x) }

// Up reports the world-frame direction of the body's up axis; its Y
// component is the cosine of the tilt from vertical.
func (l *Lander) Up() r3.Vec {
	return r3.Rotation(unit(rotationOf(l.x))).Rotate(r3.Vec{Y: 1})
}

func (l *Lander) clearInput() {
	for i := range l.u {
		l.u[i] = 0
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
