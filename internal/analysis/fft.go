package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

var ErrTooShort = errors.New("need at least 4 samples")

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled
// signal. Power[k] belongs to frequency k*Resolution.
type Spectrum struct {
	Power      []float64
	Resolution float64
}

// PowerSpectrum removes the mean from data and transforms it. dt is the
// sample spacing in seconds.
func PowerSpectrum(data []float64, dt float64) (*Spectrum, error) {
	n := len(data)
	if n < 4 {
		return nil, ErrTooShort
	}
	if dt <= 0 {
		return nil, errors.New("sample spacing must be positive")
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, centered)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c) / float64(n)
	}
	return &Spectrum{Power: ps, Resolution: 1 / (float64(n) * dt)}, nil
}

// Dominant returns the strongest non-zero frequency and its amplitude.
func (s *Spectrum) Dominant() (freq, amplitude float64) {
	if len(s.Power) < 2 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(s.Power); k++ {
		if s.Power[k] > s.Power[best] {
			best = k
		}
	}
	return float64(best) * s.Resolution, s.Power[best]
}

// RMS of data, for a sense of scale next to the spectrum.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}
