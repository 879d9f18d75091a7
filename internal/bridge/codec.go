package bridge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Mode int

const (
	ModeApply Mode = 0
	ModeReset Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeApply:
		return "apply"
	case ModeReset:
		return "reset"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Reset places the body at (X,Y,Z) with the given pitch and yaw in degrees.
// Roll is always zero.
type Reset struct {
	X, Y, Z    float64
	Pitch, Yaw float64
}

// Apply holds one step of actuator input. Thrust is a throttle expected in
// [0,1]; Pitch, Yaw and Roll are unbounded torque commands.
type Apply struct {
	Pitch, Yaw, Thrust, Roll float64
}

// Command is a decoded action line. Mode selects which of Reset or Apply
// is meaningful.
type Command struct {
	Mode  Mode
	Reset Reset
	Apply Apply
}

func NewReset(x, y, z, pitch, yaw float64) Command {
	return Command{Mode: ModeReset, Reset: Reset{X: x, Y: y, Z: z, Pitch: pitch, Yaw: yaw}}
}

func NewApply(pitch, yaw, thrust, roll float64) Command {
	return Command{Mode: ModeApply, Apply: Apply{Pitch: pitch, Yaw: yaw, Thrust: thrust, Roll: roll}}
}

// String renders the command in wire form, without the line delimiter.
func (c Command) String() string {
	switch c.Mode {
	case ModeReset:
		return joinFloats([]float64{1, c.Reset.X, c.Reset.Y, c.Reset.Z, c.Reset.Pitch, c.Reset.Yaw})
	default:
		return joinFloats([]float64{0, c.Apply.Pitch, c.Apply.Yaw, c.Apply.Thrust, c.Apply.Roll})
	}
}

// Values returns the numeric payload in wire order, without the mode tag.
func (c Command) Values() []float64 {
	if c.Mode == ModeReset {
		return []float64{c.Reset.X, c.Reset.Y, c.Reset.Z, c.Reset.Pitch, c.Reset.Yaw}
	}
	return []float64{c.Apply.Pitch, c.Apply.Yaw, c.Apply.Thrust, c.Apply.Roll}
}

var bracketStripper = strings.NewReplacer("[", "", "]", "", " ", "")

// Decode parses an action line. It reports false for an unknown or
// unparsable mode tag and for lines with too few fields. Individual
// payload fields that fail to parse become 0.
func Decode(msg string) (Command, bool) {
	msg = strings.TrimSpace(bracketStripper.Replace(msg))
	if msg == "" {
		return Command{}, false
	}
	parts := strings.Split(msg, ",")

	raw, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || math.IsNaN(raw) || math.Abs(raw) > math.MaxInt32 {
		return Command{}, false
	}

	switch Mode(int(raw)) {
	case ModeReset:
		if len(parts) < 6 {
			return Command{}, false
		}
		return NewReset(
			parseField(parts[1]),
			parseField(parts[2]),
			parseField(parts[3]),
			parseField(parts[4]),
			parseField(parts[5]),
		), true
	case ModeApply:
		if len(parts) < 5 {
			return Command{}, false
		}
		return NewApply(
			parseField(parts[1]),
			parseField(parts[2]),
			parseField(parts[3]),
			parseField(parts[4]),
		), true
	}
	return Command{}, false
}

// parseField never fails: malformed or non-finite input reads as 0.
func parseField(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Encode renders a state as a response line, including the trailing '\n'.
// strconv never consults the host locale, so the separator is always '.'.
func Encode(s StateVector) string {
	return joinFloats(s[:]) + "\n"
}

func joinFloats(vals []float64) string {
	var b strings.Builder
	b.Grow(len(vals) * 12)
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return b.String()
}
