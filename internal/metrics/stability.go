package metrics

import (
	"math"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/sim"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Upright is the fraction of steps on which the body's up axis stayed within
// threshold degrees of vertical.
type Upright struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewUpright(thresholdDeg float64) *Upright {
	return &Upright{
		name:      "upright",
		threshold: thresholdDeg,
	}
}

func (u *Upright) Name() string {
	return u.name
}

func (u *Upright) Observe(s sim.Step) {
	u.samples++
	if Tilt(s.State) > u.threshold {
		u.violations++
	}
}

func (u *Upright) Value() float64 {
	if u.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(u.violations)/float64(u.samples)
}

func (u *Upright) Reset() {
	u.violations = 0
	u.samples = 0
}

// Tilt is the angle in degrees between the body's up axis and world up.
func Tilt(s bridge.StateVector) float64 {
	q := quat.Number{Real: s[bridge.QW], Imag: s[bridge.QX], Jmag: s[bridge.QY], Kmag: s[bridge.QZ]}
	n := quat.Abs(q)
	if n == 0 {
		return 0
	}
	up := r3.Rotation(quat.Scale(1/n, q)).Rotate(r3.Vec{Y: 1})
	return math.Acos(math.Max(-1, math.Min(1, up.Y))) * 180 / math.Pi
}
