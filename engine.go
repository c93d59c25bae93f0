package neuralamp

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/aidadsp/go-neural-amp/internal/tone"
)

// ErrInvalidConfig indicates a configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the engine construction settings.
type Config struct {
	// SampleRate is the processing rate in Hz. It can be changed later
	// with SetSampleRate.
	SampleRate float64
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidConfig, c.SampleRate)
	}
	return nil
}

// Engine is the mono amp-modeling signal chain: input conditioning, the
// neural model stage and the tone section, driven by the indexed
// parameter table.
//
// Process is meant for a dedicated audio goroutine; every other method
// belongs to a control context. The two sides share the model through an
// atomic pointer and the parameters through plain scalars whose torn
// reads are tolerated (see the package documentation).
type Engine struct {
	params     [NumParams]float32
	sampleRate float64

	tone         *tone.Control
	globalBypass bool

	model   atomic.Pointer[DynamicModel]
	running atomic.Bool
}

// New creates an engine with every parameter at its table default and no
// model loaded. Without a model the chain still runs; the model stage
// passes audio through.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		sampleRate: cfg.SampleRate,
		tone:       tone.NewControl(),
	}
	for i := range e.params {
		e.params[i] = ParamSpecs[i].Def
	}
	e.tone.Configure(e.toneSettings(), e.sampleRate)
	e.applySwitches()
	return e, nil
}

// SampleRate returns the current processing rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// SetSampleRate rebuilds every rate-dependent coefficient from the
// current parameter values. Filter state is preserved.
func (e *Engine) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidConfig, sampleRate)
	}
	e.sampleRate = sampleRate
	e.tone.Configure(e.toneSettings(), sampleRate)
	return nil
}

// toneSettings maps the parameter table into the tone section's
// physical-unit settings.
func (e *Engine) toneSettings() tone.Settings {
	return tone.Settings{
		InputLPFPercent: float64(e.params[ParamInputLPF]),

		BassGainDB: float64(e.params[ParamBassGain]),
		BassFreqHz: float64(e.params[ParamBassFreq]),

		MidGainDB: float64(e.params[ParamMidGain]),
		MidFreqHz: float64(e.params[ParamMidFreq]),
		MidQ:      float64(e.params[ParamMidQ]),

		TrebleGainDB: float64(e.params[ParamTrebleGain]),
		TrebleFreqHz: float64(e.params[ParamTrebleFreq]),

		DepthGainDB:    float64(e.params[ParamDepthGain]),
		PresenceGainDB: float64(e.params[ParamPresenceGain]),

		PregainDB: float64(e.params[ParamPregain]),
		MasterDB:  float64(e.params[ParamMaster]),
	}
}

// applySwitches pushes the boolean and enumerated parameters into the
// tone section's routing flags.
func (e *Engine) applySwitches() {
	e.tone.NetBypass = e.params[ParamNetBypass] > boolThreshold
	e.tone.EQBypass = e.params[ParamEQBypass] > boolThreshold
	if e.params[ParamEQPosition] > boolThreshold {
		e.tone.Position = tone.PositionPre
	} else {
		e.tone.Position = tone.PositionPost
	}
	if e.params[ParamMidType] > boolThreshold {
		e.tone.SetMidType(tone.MidBandpass)
	} else {
		e.tone.SetMidType(tone.MidPeak)
	}
	e.globalBypass = e.params[ParamGlobalBypass] > boolThreshold
}

// Activate prepares the chain for a fresh processing run: the gain ramps
// snap to their targets so playback does not start with a fade, and the
// model's recurrent state is reset.
func (e *Engine) Activate() {
	e.tone.Pregain.ClearToTarget()
	e.tone.Master.ClearToTarget()

	e.running.Store(true)
	if m := e.model.Load(); m != nil {
		m.reset()
	}
	e.running.Store(false)
}

// Process runs one buffer through the chain, reading from in and writing
// to out. The two slices must have equal length and may alias. It never
// blocks, never allocates and cannot fail.
//
// Stage order is fixed: input lowpass, pre-gain ramp, EQ when positioned
// pre, neural model, DC blocker, EQ when positioned post, master-gain
// ramp. With the global bypass engaged the input is copied through
// untouched.
func (e *Engine) Process(in, out []float32) {
	if e.globalBypass {
		copy(out, in)
		return
	}

	e.tone.InLPF.ProcessInto(out, in)
	e.tone.Pregain.ApplyGainRamp(out)

	eqActive := !e.tone.EQBypass
	if eqActive && e.tone.Position == tone.PositionPre {
		e.tone.Apply(out)
	}

	if !e.tone.NetBypass {
		if m := e.model.Load(); m != nil {
			e.running.Store(true)
			m.apply(out)
			e.running.Store(false)
		}
	}

	e.tone.DCBlocker.ProcessBuffer(out)

	if eqActive && e.tone.Position == tone.PositionPost {
		e.tone.Apply(out)
	}

	e.tone.Master.ApplyGainRamp(out)
}
