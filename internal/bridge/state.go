package bridge

import (
	"fmt"
	"strconv"
	"strings"
)

const StateFields = 13

// Field indices of a StateVector, in wire order.
const (
	DX = iota
	DY
	DZ
	VX
	VY
	VZ
	WX
	WY
	WZ
	QX
	QY
	QZ
	QW
)

var StateFieldNames = [StateFields]string{
	"dx", "dy", "dz", "vx", "vy", "vz", "wx", "wy", "wz", "qx", "qy", "qz", "qw",
}

// StateVector is the target-relative body state reported after each step.
// DY is height above the target; DX and DZ are target minus body.
type StateVector [StateFields]float64

func NewStateVector(delta, vel, angVel [3]float64, rot [4]float64) StateVector {
	return StateVector{
		delta[0], delta[1], delta[2],
		vel[0], vel[1], vel[2],
		angVel[0], angVel[1], angVel[2],
		rot[0], rot[1], rot[2], rot[3],
	}
}

func (s StateVector) Delta() [3]float64           { return [3]float64{s[DX], s[DY], s[DZ]} }
func (s StateVector) Velocity() [3]float64        { return [3]float64{s[VX], s[VY], s[VZ]} }
func (s StateVector) AngularVelocity() [3]float64 { return [3]float64{s[WX], s[WY], s[WZ]} }
func (s StateVector) Rotation() [4]float64        { return [4]float64{s[QX], s[QY], s[QZ], s[QW]} }

// ParseState reads a response line as a controller would. Unlike Decode it
// is strict: every field must parse and there must be exactly 13.
func ParseState(line string) (StateVector, error) {
	var s StateVector
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != StateFields {
		return s, fmt.Errorf("%w: got %d", ErrFieldCount, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return s, fmt.Errorf("field %s: %w", StateFieldNames[i], err)
		}
		s[i] = v
	}
	return s, nil
}
