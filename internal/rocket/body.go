package rocket

import (
	"fmt"
	"math"

	"github.com/san-kum/stepbridge/internal/dynamo"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body state layout. Position, velocity and angular velocity are in the
// world frame (Y up); the rotation maps body axes to world axes.
const (
	PX = iota
	PY
	PZ
	VX
	VY
	VZ
	QX
	QY
	QZ
	QW
	WX
	WY
	WZ
	BodyStateDim
)

// Control layout: force then torque, both in the body frame.
const (
	FX = iota
	FY
	FZ
	TX
	TY
	TZ
	BodyControlDim
)

const DefaultGravity = 9.81

// Body is a rigid body with a diagonal inertia tensor under gravity and
// linear/angular drag.
type Body struct {
	Mass        float64
	Inertia     r3.Vec
	Gravity     float64
	Drag        float64
	AngularDrag float64
}

var (
	_ dynamo.System       = (*Body)(nil)
	_ dynamo.Normalizer   = (*Body)(nil)
	_ dynamo.Configurable = (*Body)(nil)
)

func NewBody() *Body {
	return &Body{
		Mass:        1000,
		Inertia:     r3.Vec{X: 1583, Y: 500, Z: 1583},
		Gravity:     DefaultGravity,
		Drag:        0,
		AngularDrag: 0.05,
	}
}

func (b *Body) StateDim() int   { return BodyStateDim }
func (b *Body) ControlDim() int { return BodyControlDim }

func (b *Body) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, BodyStateDim)
	if len(x) < BodyStateDim {
		return dx
	}

	q := unit(rotationOf(x))
	rot := r3.Rotation(q)
	inv := r3.Rotation(quat.Conj(q))

	v := r3.Vec{X: x[VX], Y: x[VY], Z: x[VZ]}
	w := r3.Vec{X: x[WX], Y: x[WY], Z: x[WZ]}

	var fBody, tBody r3.Vec
	if len(u) >= BodyControlDim {
		fBody = r3.Vec{X: u[FX], Y: u[FY], Z: u[FZ]}
		tBody = r3.Vec{X: u[TX], Y: u[TY], Z: u[TZ]}
	}

	force := r3.Add(rot.Rotate(fBody), r3.Vec{Y: -b.Mass * b.Gravity})
	force = r3.Sub(force, r3.Scale(b.Drag, v))
	acc := r3.Scale(1/b.Mass, force)

	// Euler's rotation equations in the body frame.
	wb := inv.Rotate(w)
	iw := r3.Vec{X: b.Inertia.X * wb.X, Y: b.Inertia.Y * wb.Y, Z: b.Inertia.Z * wb.Z}
	net := r3.Sub(r3.Sub(tBody, r3.Cross(wb, iw)), r3.Scale(b.AngularDrag, iw))
	alphaBody := r3.Vec{X: net.X / b.Inertia.X, Y: net.Y / b.Inertia.Y, Z: net.Z / b.Inertia.Z}
	alpha := rot.Rotate(alphaBody)

	// dq/dt = 1/2 (0, w) q with w in the world frame.
	dq := quat.Scale(0.5, quat.Mul(quat.Number{Imag: w.X, Jmag: w.Y, Kmag: w.Z}, q))

	dx[PX], dx[PY], dx[PZ] = v.X, v.Y, v.Z
	dx[VX], dx[VY], dx[VZ] = acc.X, acc.Y, acc.Z
	dx[QX], dx[QY], dx[QZ], dx[QW] = dq.Imag, dq.Jmag, dq.Kmag, dq.Real
	dx[WX], dx[WY], dx[WZ] = alpha.X, alpha.Y, alpha.Z
	return dx
}

// Normalize projects the rotation back onto the unit sphere.
func (b *Body) Normalize(x dynamo.State) dynamo.State {
	q := unit(rotationOf(x))
	x[QX], x[QY], x[QZ], x[QW] = q.Imag, q.Jmag, q.Kmag, q.Real
	return x
}

// Energy is kinetic plus potential energy relative to y=0.
func (b *Body) Energy(x dynamo.State) float64 {
	v := r3.Vec{X: x[VX], Y: x[VY], Z: x[VZ]}
	wb := r3.Rotation(quat.Conj(unit(rotationOf(x)))).Rotate(r3.Vec{X: x[WX], Y: x[WY], Z: x[WZ]})
	ke := 0.5 * b.Mass * r3.Norm2(v)
	keRot := 0.5 * (b.Inertia.X*wb.X*wb.X + b.Inertia.Y*wb.Y*wb.Y + b.Inertia.Z*wb.Z*wb.Z)
	return ke + keRot + b.Mass*b.Gravity*x[PY]
}

func (b *Body) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":         b.Mass,
		"inertia_x":    b.Inertia.X,
		"inertia_y":    b.Inertia.Y,
		"inertia_z":    b.Inertia.Z,
		"gravity":      b.Gravity,
		"drag":         b.Drag,
		"angular_drag": b.AngularDrag,
	}
}

func (b *Body) SetParam(name string, value float64) error {
	switch name {
	case "mass", "inertia_x", "inertia_y", "inertia_z":
		if value <= 0 {
			return fmt.Errorf("%s=%g: %w", name, value, dynamo.ErrParameterBounds)
		}
	case "drag", "angular_drag":
		if value < 0 {
			return fmt.Errorf("%s=%g: %w", name, value, dynamo.ErrParameterBounds)
		}
	}
	switch name {
	case "mass":
		b.Mass = value
	case "inertia_x":
		b.Inertia.X = value
	case "inertia_y":
		b.Inertia.Y = value
	case "inertia_z":
		b.Inertia.Z = value
	case "gravity":
		b.Gravity = value
	case "drag":
		b.Drag = value
	case "angular_drag":
		b.AngularDrag = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}

func rotationOf(x dynamo.State) quat.Number {
	return quat.Number{Real: x[QW], Imag: x[QX], Jmag: x[QY], Kmag: x[QZ]}
}

func unit(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// EulerRotation composes yaw about Y with pitch about X, both in degrees,
// with roll fixed at zero.
func EulerRotation(pitch, yaw float64) quat.Number {
	qPitch := quat.Number(r3.NewRotation(pitch*math.Pi/180, r3.Vec{X: 1}))
	qYaw := quat.Number(r3.NewRotation(yaw*math.Pi/180, r3.Vec{Y: 1}))
	return quat.Mul(qYaw, qPitch)
}
