// Package filter provides the second-order IIR filter sections used by the
// amp engine's tone stack.
package filter

import "math"

// Shape identifies the frequency response of a biquad section.
type Shape int

const (
	// Lowpass passes frequencies below the corner frequency.
	Lowpass Shape = iota

	// Highpass passes frequencies above the corner frequency.
	Highpass

	// Bandpass passes a band around the center frequency.
	Bandpass

	// Notch rejects a band around the center frequency.
	Notch

	// Peak boosts or cuts a band around the center frequency.
	Peak

	// LowShelf boosts or cuts everything below the corner frequency.
	LowShelf

	// HighShelf boosts or cuts everything above the corner frequency.
	HighShelf
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Notch:
		return "notch"
	case Peak:
		return "peak"
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	default:
		return "unknown"
	}
}

const dbPerMagnitudeDecade = 20.0

// Biquad is a reconfigurable second-order IIR filter section.
//
// The recursion runs in transposed direct form II: five coefficients and
// two state samples. Coefficients and state are kept in float64 while the
// audio samples are float32; the extra internal precision costs nothing
// measurable on the buffer path and keeps low-frequency sections (the
// 35 Hz DC blocker in particular) numerically well behaved.
//
// Setters recompute the full coefficient set synchronously, so the
// coefficients are always consistent with the last-set (shape, fc, Q,
// gain) tuple. There is no parameter validation on the processing path:
// a degenerate fc or Q produces a degenerate but non-crashing response.
type Biquad struct {
	shape    Shape
	fc       float64 // normalized center frequency, cycles per sample
	q        float64
	peakGain float64 // dB, shelf and peak shapes only

	b0, b1, b2 float64 // numerator coefficients
	a1, a2     float64 // denominator coefficients (a0 normalized to 1)

	z1, z2 float64 // transposed direct form II state
}

// New creates a biquad with the given shape, normalized center frequency
// (0..0.5 of the sample rate), Q and peak gain in dB.
func New(shape Shape, fc, q, peakGainDB float64) *Biquad {
	b := &Biquad{}
	b.SetBiquad(shape, fc, q, peakGainDB)
	return b
}

// SetBiquad reconfigures every design parameter and recomputes coefficients.
func (b *Biquad) SetBiquad(shape Shape, fc, q, peakGainDB float64) {
	b.shape = shape
	b.fc = fc
	b.q = q
	b.peakGain = peakGainDB
	b.calc()
}

// SetType changes the filter shape, keeping fc, Q and gain.
func (b *Biquad) SetType(shape Shape) {
	b.shape = shape
	b.calc()
}

// SetFc changes the normalized center frequency, keeping the other parameters.
// Callers are expected to pre-scale physical frequency by 1/sampleRate and
// keep the result inside (0, 0.5).
func (b *Biquad) SetFc(fc float64) {
	b.fc = fc
	b.calc()
}

// SetQ changes the filter Q, keeping the other parameters.
func (b *Biquad) SetQ(q float64) {
	b.q = q
	b.calc()
}

// SetPeakGain changes the gain in dB, keeping the other parameters.
// It affects shelf and peak shapes only.
func (b *Biquad) SetPeakGain(peakGainDB float64) {
	b.peakGain = peakGainDB
	b.calc()
}

// Shape returns the current filter shape.
func (b *Biquad) Shape() Shape { return b.shape }

// Fc returns the current normalized center frequency.
func (b *Biquad) Fc() float64 { return b.fc }

// Q returns the current filter Q.
func (b *Biquad) Q() float64 { return b.q }

// PeakGain returns the current peak gain in dB.
func (b *Biquad) PeakGain() float64 { return b.peakGain }

// Coefficients returns the normalized recursion coefficients (b0, b1, b2,
// a1, a2). Mainly useful for analysis and tests.
func (b *Biquad) Coefficients() (b0, b1, b2, a1, a2 float64) {
	return b.b0, b.b1, b.b2, b.a1, b.a2
}

// Process filters one sample through the section.
func (b *Biquad) Process(in float32) float32 {
	x := float64(in)
	out := x*b.b0 + b.z1
	b.z1 = x*b.b1 + b.z2 - b.a1*out
	b.z2 = x*b.b2 - b.a2*out
	return float32(out)
}

// ProcessBuffer filters a buffer in place. Cascaded sections can share one
// buffer without extra allocation.
func (b *Biquad) ProcessBuffer(buf []float32) {
	for i := range buf {
		buf[i] = b.Process(buf[i])
	}
}

// ProcessInto filters src into dst. The two slices may alias.
// Samples beyond len(dst) are ignored.
func (b *Biquad) ProcessInto(dst, src []float32) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = b.Process(src[i])
	}
}

// Reset clears the recursion state without touching the coefficients.
func (b *Biquad) Reset() {
	b.z1 = 0
	b.z2 = 0
}

// calc recomputes the coefficient set from (shape, fc, q, peakGain) using
// the bilinear-transform design equations for each canonical shape.
func (b *Biquad) calc() {
	v := math.Pow(10.0, math.Abs(b.peakGain)/dbPerMagnitudeDecade)
	k := math.Tan(math.Pi * b.fc)
	kk := k * k

	switch b.shape {
	case Lowpass:
		norm := 1.0 / (1.0 + k/b.q + kk)
		b.b0 = kk * norm
		b.b1 = 2.0 * b.b0
		b.b2 = b.b0
		b.a1 = 2.0 * (kk - 1.0) * norm
		b.a2 = (1.0 - k/b.q + kk) * norm

	case Highpass:
		norm := 1.0 / (1.0 + k/b.q + kk)
		b.b0 = norm
		b.b1 = -2.0 * b.b0
		b.b2 = b.b0
		b.a1 = 2.0 * (kk - 1.0) * norm
		b.a2 = (1.0 - k/b.q + kk) * norm

	case Bandpass:
		norm := 1.0 / (1.0 + k/b.q + kk)
		b.b0 = k / b.q * norm
		b.b1 = 0.0
		b.b2 = -b.b0
		b.a1 = 2.0 * (kk - 1.0) * norm
		b.a2 = (1.0 - k/b.q + kk) * norm

	case Notch:
		norm := 1.0 / (1.0 + k/b.q + kk)
		b.b0 = (1.0 + kk) * norm
		b.b1 = 2.0 * (kk - 1.0) * norm
		b.b2 = b.b0
		b.a1 = b.b1
		b.a2 = (1.0 - k/b.q + kk) * norm

	case Peak:
		if b.peakGain >= 0 {
			norm := 1.0 / (1.0 + k/b.q + kk)
			b.b0 = (1.0 + v*k/b.q + kk) * norm
			b.b1 = 2.0 * (kk - 1.0) * norm
			b.b2 = (1.0 - v*k/b.q + kk) * norm
			b.a1 = b.b1
			b.a2 = (1.0 - k/b.q + kk) * norm
		} else {
			norm := 1.0 / (1.0 + v*k/b.q + kk)
			b.b0 = (1.0 + k/b.q + kk) * norm
			b.b1 = 2.0 * (kk - 1.0) * norm
			b.b2 = (1.0 - k/b.q + kk) * norm
			b.a1 = b.b1
			b.a2 = (1.0 - v*k/b.q + kk) * norm
		}

	case LowShelf:
		if b.peakGain >= 0 {
			norm := 1.0 / (1.0 + math.Sqrt2*k + kk)
			b.b0 = (1.0 + math.Sqrt(2.0*v)*k + v*kk) * norm
			b.b1 = 2.0 * (v*kk - 1.0) * norm
			b.b2 = (1.0 - math.Sqrt(2.0*v)*k + v*kk) * norm
			b.a1 = 2.0 * (kk - 1.0) * norm
			b.a2 = (1.0 - math.Sqrt2*k + kk) * norm
		} else {
			norm := 1.0 / (1.0 + math.Sqrt(2.0*v)*k + v*kk)
			b.b0 = (1.0 + math.Sqrt2*k + kk) * norm
			b.b1 = 2.0 * (kk - 1.0) * norm
			b.b2 = (1.0 - math.Sqrt2*k + kk) * norm
			b.a1 = 2.0 * (v*kk - 1.0) * norm
			b.a2 = (1.0 - math.Sqrt(2.0*v)*k + v*kk) * norm
		}

	case HighShelf:
		if b.peakGain >= 0 {
			norm := 1.0 / (1.0 + math.Sqrt2*k + kk)
			b.b0 = (v + math.Sqrt(2.0*v)*k + kk) * norm
			b.b1 = 2.0 * (kk - v) * norm
			b.b2 = (v - math.Sqrt(2.0*v)*k + kk) * norm
			b.a1 = 2.0 * (kk - 1.0) * norm
			b.a2 = (1.0 - math.Sqrt2*k + kk) * norm
		} else {
			norm := 1.0 / (v + math.Sqrt(2.0*v)*k + kk)
			b.b0 = (1.0 + math.Sqrt2*k + kk) * norm
			b.b1 = 2.0 * (kk - 1.0) * norm
			b.b2 = (1.0 - math.Sqrt2*k + kk) * norm
			b.a1 = 2.0 * (kk - v) * norm
			b.a2 = (v - math.Sqrt(2.0*v)*k + kk) * norm
		}
	}
}
