package viz

import (
	"math"

	"github.com/san-kum/stepbridge/internal/bridge"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	minHalfSpan = 20.0
	minCeiling  = 30.0
	bodyLength  = 8
	flameLength = 6
)

// DrawScene renders a side view of the lander above its target: world X
// runs right, Y runs up, and the target sits at the bottom center. thrust
// is the throttle in [0,1] and is drawn as a flame below the body.
func DrawScene(c *Canvas, s bridge.StateVector, thrust float64) {
	c.Clear()
	w, h := c.Width*2, c.Height*4
	if w < 4 || h < 4 {
		return
	}
	ground := h - 2

	// Sensor position relative to the target.
	offset, height := -s[bridge.DX], s[bridge.DY]
	halfSpan := math.Max(minHalfSpan, math.Abs(offset)*1.2)
	ceiling := math.Max(minCeiling, height*1.2)

	c.DrawLine(0, ground+1, w-1, ground+1)
	c.DrawLine(w/2, ground, w/2, ground-2)

	px := w/2 + int(offset/halfSpan*float64(w/2-2))
	py := ground - int(height/ceiling*float64(ground-1))

	up := UpAxis(s)
	tx := px + int(math.Round(up.X*bodyLength))
	ty := py - int(math.Round(up.Y*bodyLength))
	c.DrawLine(px, py, tx, ty)
	c.DrawLine(px-2, py+1, px+2, py+1)

	if thrust > 0 {
		n := float64(flameLength) * math.Min(1, thrust)
		fx := px - int(math.Round(up.X*n))
		fy := py + int(math.Round(up.Y*n))
		c.DrawLine(px, py+2, fx, fy+2)
	}
}

// UpAxis is the world direction of the body's up axis.
func UpAxis(s bridge.StateVector) r3.Vec {
	q := quat.Number{Real: s[bridge.QW], Imag: s[bridge.QX], Jmag: s[bridge.QY], Kmag: s[bridge.QZ]}
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{Y: 1}
	}
	return r3.Rotation(quat.Scale(1/n, q)).Rotate(r3.Vec{Y: 1})
}
