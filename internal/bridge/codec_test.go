package bridge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
		ok   bool
	}{
		{"reset", "1,0,10,0,0,0", NewReset(0, 10, 0, 0, 0), true},
		{"reset with angles", "1,-2.5,12,3,1.5,-2", NewReset(-2.5, 12, 3, 1.5, -2), true},
		{"apply", "0,0.1,-0.2,0.9,0.05", NewApply(0.1, -0.2, 0.9, 0.05), true},
		{"apply zero", "0,0,0,0,0", NewApply(0, 0, 0, 0), true},
		{"brackets and spaces", "[0, 0.5, -0.5, 1.0, 0]", NewApply(0.5, -0.5, 1, 0), true},
		{"python list repr", "[1.0, 3.0, 15.0, -1.0, 2.0, 0.0]", NewReset(3, 15, -1, 2, 0), true},
		{"malformed field", "0,abc,0,0.5,0", NewApply(0, 0, 0.5, 0), true},
		{"empty field", "0,,1,0.5,", NewApply(0, 1, 0.5, 0), true},
		{"extra fields ignored", "0,1,2,0.3,4,99,100", NewApply(1, 2, 0.3, 4), true},
		{"fractional tag truncates", "1.9,1,2,3,4,5", NewReset(1, 2, 3, 4, 5), true},
		{"negative fraction truncates to apply", "-0.5,1,2,0.3,4", NewApply(1, 2, 0.3, 4), true},
		{"exponent", "0,1e-3,2E1,5e-1,0", NewApply(0.001, 20, 0.5, 0), true},
		{"nan field reads zero", "0,NaN,1,Inf,0", NewApply(0, 1, 0, 0), true},

		{"garbage", "garbage", Command{}, false},
		{"empty", "", Command{}, false},
		{"only brackets", "[ ]", Command{}, false},
		{"unknown tag", "2,0,0,0,0,0", Command{}, false},
		{"negative tag", "-1,0,0,0,0,0", Command{}, false},
		{"apply too short", "0,1,2,3", Command{}, false},
		{"reset too short", "1,0,10,0,0", Command{}, false},
		{"nan tag", "NaN,0,0,0,0", Command{}, false},
		{"inf tag", "Inf,0,0,0,0,0", Command{}, false},
		{"huge tag", "1e300,0,0,0,0,0", Command{}, false},
		{"comma decimal", "0,5;0,0,0", Command{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	s := StateVector{1.5, 10, -0.25, 0, -9.81, 0, 0.001, 0, 0, 0, 0, 0, 1}
	assert.Equal(t, "1.5,10,-0.25,0,-9.81,0,0.001,0,0,0,0,0,1\n", Encode(s))

	var zero StateVector
	assert.Equal(t, "0,0,0,0,0,0,0,0,0,0,0,0,0\n", Encode(zero))
}

func TestEncodeNeverUsesExponent(t *testing.T) {
	s := StateVector{1e-9, 12345678.5, -3e-7}
	line := Encode(s)
	assert.NotContains(t, line, "e")
	assert.NotContains(t, line, "E")

	back, err := ParseState(line)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestApplyRoundTrip(t *testing.T) {
	cmds := []Command{
		NewApply(0, 0, 0, 0),
		NewApply(0.123456789, -1.5, 0.75, 3.25),
		NewApply(-100, 100, 1, -0.001),
		NewApply(math.Pi, -math.E, 0.3333333333333333, 1e-12),
	}
	for _, c := range cmds {
		line := c.String()
		got, ok := Decode(line)
		require.True(t, ok, line)
		assert.InDeltaSlice(t, c.Values(), got.Values(), 1e-12, line)
		assert.Equal(t, ModeApply, got.Mode)
	}
}

func TestResetString(t *testing.T) {
	assert.Equal(t, "1,0,10,0,0,0", NewReset(0, 10, 0, 0, 0).String())
	assert.Equal(t, "0,0.5,-0.5,1,0", NewApply(0.5, -0.5, 1, 0).String())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "apply", ModeApply.String())
	assert.Equal(t, "reset", ModeReset.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
