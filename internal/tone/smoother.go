// Package tone implements the amp engine's analog-style tone section: the
// fixed biquad cascade of the EQ stack and the exponential gain smoothers
// that de-click the pre and master volume controls.
package tone

import "math"

// Smoother ramps a control value toward its target with a one-pole
// exponential approach, so a stepped gain change never produces an audible
// discontinuity. All methods are allocation free.
type Smoother struct {
	current float64
	target  float64
	coeff   float64

	timeConstant float64 // seconds
	sampleRate   float64
}

// NewSmoother creates a smoother with the given time constant in seconds.
// SetSampleRate must be called before the smoother produces useful ramps.
func NewSmoother(timeConstant float64) *Smoother {
	return &Smoother{timeConstant: timeConstant}
}

// SetTimeConstant changes the ramp time constant in seconds.
func (s *Smoother) SetTimeConstant(seconds float64) {
	s.timeConstant = seconds
	s.updateCoeff()
}

// SetSampleRate recomputes the per-sample approach coefficient for the
// given sample rate. Must be called on every sample-rate change.
func (s *Smoother) SetSampleRate(sampleRate float64) {
	s.sampleRate = sampleRate
	s.updateCoeff()
}

// SetTarget sets the destination value. The current value keeps ramping
// from wherever it is, so there is no discontinuity.
func (s *Smoother) SetTarget(v float64) {
	s.target = v
}

// Target returns the current destination value.
func (s *Smoother) Target() float64 { return s.target }

// Current returns the present ramp position without advancing it.
func (s *Smoother) Current() float64 { return s.current }

// Next advances the ramp by one sample and returns the new value.
func (s *Smoother) Next() float32 {
	s.current += (s.target - s.current) * s.coeff
	return float32(s.current)
}

// ClearToTarget snaps the current value onto the target. Used on engine
// activation so a freshly configured gain does not fade in slowly.
func (s *Smoother) ClearToTarget() {
	s.current = s.target
}

// ApplyGainRamp multiplies the buffer by the ramping value, advancing the
// ramp once per sample.
func (s *Smoother) ApplyGainRamp(buf []float32) {
	for i := range buf {
		buf[i] *= s.Next()
	}
}

func (s *Smoother) updateCoeff() {
	if s.timeConstant <= 0 || s.sampleRate <= 0 {
		// Degenerate configuration: snap instantly instead of stalling.
		s.coeff = 1
		return
	}
	s.coeff = 1.0 - math.Exp(-1.0/(s.timeConstant*s.sampleRate))
}
