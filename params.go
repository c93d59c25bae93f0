package neuralamp

import (
	"github.com/aidadsp/go-neural-amp/internal/mathutil"
	"github.com/aidadsp/go-neural-amp/internal/tone"
)

// Parameter indices. The table order is part of the public surface:
// hosts address parameters by index and persist them by symbol.
const (
	ParamInputLPF int = iota
	ParamPregain
	ParamNetBypass
	ParamEQBypass
	ParamEQPosition
	ParamBassGain
	ParamBassFreq
	ParamMidGain
	ParamMidFreq
	ParamMidQ
	ParamMidType
	ParamTrebleGain
	ParamTrebleFreq
	ParamDepthGain
	ParamPresenceGain
	ParamMaster
	ParamCabSimBypass
	ParamGlobalBypass

	// NumParams is the size of the parameter table.
	NumParams int = iota
)

// ParamSpec declares one row of the parameter table: display name, host
// symbol, unit and value range, plus hints for boolean and stepped
// parameters. Enumerated parameters carry Labels indexed by value.
type ParamSpec struct {
	Name    string
	Symbol  string
	Unit    string
	Def     float32
	Min     float32
	Max     float32
	Boolean bool
	Integer bool
	Labels  []string
}

// ParamSpecs is the full parameter table. Defaults describe a neutral
// rig: EQ flat, gains at unity, nothing bypassed.
var ParamSpecs = [NumParams]ParamSpec{
	ParamInputLPF:     {Name: "Input LPF", Symbol: "in_lpf", Unit: "%", Def: 50, Min: 25, Max: 99},
	ParamPregain:      {Name: "Pregain", Symbol: "pre_gain", Unit: "dB", Def: -6, Min: -12, Max: 0},
	ParamNetBypass:    {Name: "Net Bypass", Symbol: "net_bypass", Def: 0, Min: 0, Max: 1, Boolean: true},
	ParamEQBypass:     {Name: "Eq Bypass", Symbol: "eq_bypass", Def: 0, Min: 0, Max: 1, Boolean: true},
	ParamEQPosition:   {Name: "Eq Position", Symbol: "eq_pos", Def: 0, Min: 0, Max: 1, Integer: true, Labels: []string{"POST", "PRE"}},
	ParamBassGain:     {Name: "Bass", Symbol: "bass", Unit: "dB", Def: 0, Min: -8, Max: 8},
	ParamBassFreq:     {Name: "Bass Freq", Symbol: "bfreq", Unit: "Hz", Def: 305, Min: 75, Max: 600},
	ParamMidGain:      {Name: "Mid", Symbol: "mid", Unit: "dB", Def: 0, Min: -8, Max: 8},
	ParamMidFreq:      {Name: "Mid Freq", Symbol: "mfreq", Unit: "Hz", Def: 750, Min: 150, Max: 5000},
	ParamMidQ:         {Name: "Mid Q", Symbol: "midq", Def: 0.707, Min: 0.2, Max: 5},
	ParamMidType:      {Name: "Mid Type", Symbol: "mtype", Def: 0, Min: 0, Max: 1, Integer: true, Labels: []string{"PEAK", "BANDPASS"}},
	ParamTrebleGain:   {Name: "Treble", Symbol: "treble", Unit: "dB", Def: 0, Min: -8, Max: 8},
	ParamTrebleFreq:   {Name: "Treble Freq", Symbol: "tfreq", Unit: "Hz", Def: 2000, Min: 1000, Max: 4000},
	ParamDepthGain:    {Name: "Depth", Symbol: "depth", Unit: "dB", Def: 0, Min: -8, Max: 8},
	ParamPresenceGain: {Name: "Presence", Symbol: "presence", Unit: "dB", Def: 0, Min: -8, Max: 8},
	ParamMaster:       {Name: "Master", Symbol: "master", Unit: "dB", Def: 0, Min: -15, Max: 15},
	ParamCabSimBypass: {Name: "Cabsim Bypass", Symbol: "cabsim_bypass", Def: 0, Min: 0, Max: 1, Boolean: true},
	ParamGlobalBypass: {Name: "Bypass", Symbol: "global_bypass", Def: 0, Min: 0, Max: 1, Boolean: true, Labels: []string{"ON", "OFF"}},
}

// ParamIndexBySymbol resolves a host symbol to its parameter index. The
// second return is false when the symbol is not in the table.
func ParamIndexBySymbol(symbol string) (int, bool) {
	for i := range ParamSpecs {
		if ParamSpecs[i].Symbol == symbol {
			return i, true
		}
	}
	return 0, false
}

// GetParameterValue returns the current value of the indexed parameter.
// Out-of-range indices return 0.
func (e *Engine) GetParameterValue(index int) float32 {
	if index < 0 || index >= NumParams {
		return 0
	}
	return e.params[index]
}

// SetParameterValue stores the value and synchronously re-derives the
// affected coefficients or targets, so filters are never left stale
// against the table. Out-of-range indices are ignored. Values are not
// clamped; callers own range enforcement.
func (e *Engine) SetParameterValue(index int, value float32) {
	if index < 0 || index >= NumParams {
		return
	}
	e.params[index] = value

	switch index {
	case ParamInputLPF:
		e.tone.SetInputLPFPercent(float64(value))
	case ParamPregain:
		e.tone.Pregain.SetTarget(mathutil.DBToGain(float64(value)))
	case ParamNetBypass:
		e.tone.NetBypass = value > boolThreshold
	case ParamEQBypass:
		e.tone.EQBypass = value > boolThreshold
	case ParamEQPosition:
		if value > boolThreshold {
			e.tone.Position = tone.PositionPre
		} else {
			e.tone.Position = tone.PositionPost
		}
	case ParamBassGain:
		e.tone.Bass.SetPeakGain(float64(value))
	case ParamBassFreq:
		e.tone.Bass.SetFc(float64(value) / e.sampleRate)
	case ParamMidGain:
		e.tone.Mid.SetPeakGain(float64(value))
	case ParamMidFreq:
		e.tone.Mid.SetFc(float64(value) / e.sampleRate)
	case ParamMidQ:
		e.tone.Mid.SetQ(float64(value))
	case ParamMidType:
		if value > boolThreshold {
			e.tone.SetMidType(tone.MidBandpass)
		} else {
			e.tone.SetMidType(tone.MidPeak)
		}
	case ParamTrebleGain:
		e.tone.Treble.SetPeakGain(float64(value))
	case ParamTrebleFreq:
		e.tone.Treble.SetFc(float64(value) / e.sampleRate)
	case ParamDepthGain:
		e.tone.Depth.SetPeakGain(float64(value))
	case ParamPresenceGain:
		e.tone.Presence.SetPeakGain(float64(value))
	case ParamMaster:
		e.tone.Master.SetTarget(mathutil.DBToGain(float64(value)))
	case ParamCabSimBypass:
		// Stored only: cabinet convolution sits outside this engine.
	case ParamGlobalBypass:
		e.globalBypass = value > boolThreshold
	}
}
