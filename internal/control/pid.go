package control

import "math"

// PID is a scalar proportional-integral-derivative loop. The derivative
// acts on the error and is zero on the first update after a Reset.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64
	// IntegralLimit bounds the accumulated error when positive.
	IntegralLimit float64

	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

// Update feeds one measurement taken dt after the previous one and returns
// the loop output.
func (p *PID) Update(measured, dt float64) float64 {
	err := p.Target - measured
	if p.first || dt <= 0 {
		p.prevErr = err
		p.first = false
		return p.Kp*err + p.Ki*p.integral
	}

	p.integral += err * dt
	if p.IntegralLimit > 0 {
		p.integral = math.Max(-p.IntegralLimit, math.Min(p.IntegralLimit, p.integral))
	}
	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

func (p *PID) Integral() float64 { return p.integral }

// GetParams returns the tunable gains
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a gain by name. Unknown names are ignored.
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	}
}
