package tone

import (
	"github.com/aidadsp/go-neural-amp/internal/filter"
	"github.com/aidadsp/go-neural-amp/internal/mathutil"
)

// EqPosition selects whether the EQ cascade runs before or after the
// neural model stage.
type EqPosition int

const (
	// PositionPost runs the EQ after the model (default).
	PositionPost EqPosition = iota

	// PositionPre runs the EQ before the model.
	PositionPre
)

// MidType selects the mid band behavior.
type MidType int

const (
	// MidPeak is the normal peaking mid band inside the full cascade.
	MidPeak MidType = iota

	// MidBandpass turns the whole tone section into a single bandpass
	// filter, a deliberate wah-like mode that supersedes the other bands.
	MidBandpass
)

// Fixed tone stack design values.
const (
	// CommonQ is the shared Q of all fixed-Q tone filters.
	CommonQ = 0.707

	// DepthFreqHz is the fixed corner frequency of the depth shelf.
	DepthFreqHz = 75.0

	// PresenceFreqHz is the fixed corner frequency of the presence shelf.
	PresenceFreqHz = 900.0

	// DCBlockerFreqHz is the corner frequency of the output DC blocker.
	DCBlockerFreqHz = 35.0

	// GainRampSeconds is the time constant of the pre/master gain ramps.
	GainRampSeconds = 1.0

	// nyquistNorm is the normalized Nyquist frequency, the upper bound of
	// the input lowpass sweep.
	nyquistNorm = 0.5
)

// Settings carries every tone-related parameter value in physical units.
// The engine maps its parameter table into this struct; the tone package
// never sees parameter indices.
type Settings struct {
	InputLPFPercent float64 // 0-100, sweeps the input lowpass up to Nyquist

	BassGainDB float64
	BassFreqHz float64

	MidGainDB float64
	MidFreqHz float64
	MidQ      float64

	TrebleGainDB float64
	TrebleFreqHz float64

	DepthGainDB    float64
	PresenceGainDB float64

	PregainDB float64
	MasterDB  float64
}

// Control is the pedal's tone section: the input lowpass, the DC blocker,
// the five-band EQ cascade and the two gain ramps, plus the routing flags
// the engine consults every buffer.
//
// Filter instances are created once and only ever mutated in place, so
// the audio thread never observes a half-built section.
type Control struct {
	InLPF     *filter.Biquad
	DCBlocker *filter.Biquad
	Bass      *filter.Biquad
	Mid       *filter.Biquad
	Treble    *filter.Biquad
	Depth     *filter.Biquad
	Presence  *filter.Biquad

	Pregain *Smoother
	Master  *Smoother

	NetBypass bool
	EQBypass  bool
	Position  EqPosition

	midType MidType
}

// NewControl creates a tone section with default filter shapes. Configure
// must be called with real parameter values and a sample rate before use.
func NewControl() *Control {
	return &Control{
		InLPF:     filter.New(filter.Lowpass, nyquistNorm, CommonQ, 0),
		DCBlocker: filter.New(filter.Highpass, nyquistNorm, CommonQ, 0),
		Bass:      filter.New(filter.LowShelf, nyquistNorm, CommonQ, 0),
		Mid:       filter.New(filter.Peak, nyquistNorm, CommonQ, 0),
		Treble:    filter.New(filter.HighShelf, nyquistNorm, CommonQ, 0),
		Depth:     filter.New(filter.HighShelf, nyquistNorm, CommonQ, 0),
		Presence:  filter.New(filter.HighShelf, nyquistNorm, CommonQ, 0),
		Pregain:   NewSmoother(GainRampSeconds),
		Master:    NewSmoother(GainRampSeconds),
	}
}

// Configure pushes every tone parameter into its filter or smoother and is
// called on construction and on every sample-rate change.
func (c *Control) Configure(st Settings, sampleRate float64) {
	c.DCBlocker.SetFc(DCBlockerFreqHz / sampleRate)

	c.SetInputLPFPercent(st.InputLPFPercent)

	c.Bass.SetBiquad(filter.LowShelf, st.BassFreqHz/sampleRate, CommonQ, st.BassGainDB)

	midShape := filter.Peak
	if c.midType == MidBandpass {
		midShape = filter.Bandpass
	}
	c.Mid.SetBiquad(midShape, st.MidFreqHz/sampleRate, st.MidQ, st.MidGainDB)

	c.Treble.SetBiquad(filter.HighShelf, st.TrebleFreqHz/sampleRate, CommonQ, st.TrebleGainDB)

	c.Depth.SetBiquad(filter.HighShelf, DepthFreqHz/sampleRate, CommonQ, st.DepthGainDB)

	c.Presence.SetBiquad(filter.HighShelf, PresenceFreqHz/sampleRate, CommonQ, st.PresenceGainDB)

	c.Pregain.SetSampleRate(sampleRate)
	c.Pregain.SetTarget(mathutil.DBToGain(st.PregainDB))

	c.Master.SetSampleRate(sampleRate)
	c.Master.SetTarget(mathutil.DBToGain(st.MasterDB))
}

// SetInputLPFPercent sweeps the input lowpass corner from near-DC at 0
// up to Nyquist at 100.
func (c *Control) SetInputLPFPercent(percent float64) {
	c.InLPF.SetFc(mathutil.PercentToCoeff(percent) * nyquistNorm)
}

// SetMidType switches the mid band between peaking and bandpass mode,
// retyping the mid filter so its coefficients match the active mode.
func (c *Control) SetMidType(mt MidType) {
	c.midType = mt
	if mt == MidBandpass {
		c.Mid.SetType(filter.Bandpass)
	} else {
		c.Mid.SetType(filter.Peak)
	}
}

// MidMode returns the active mid band mode.
func (c *Control) MidMode() MidType { return c.midType }

// Apply runs the EQ cascade over the buffer in place.
//
// In bandpass mid mode only the mid filter runs; the other bands are
// skipped entirely, not merely flattened. Otherwise the fixed cascade is
// depth, bass, mid, treble, presence.
func (c *Control) Apply(buf []float32) {
	if c.midType == MidBandpass {
		c.Mid.ProcessBuffer(buf)
		return
	}

	c.Depth.ProcessBuffer(buf)
	c.Bass.ProcessBuffer(buf)
	c.Mid.ProcessBuffer(buf)
	c.Treble.ProcessBuffer(buf)
	c.Presence.ProcessBuffer(buf)
}
