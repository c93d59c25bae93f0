package neuralamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidadsp/go-neural-amp/internal/filter"
	"github.com/aidadsp/go-neural-amp/internal/tone"
)

const testSampleRate = 48000.0

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{SampleRate: testSampleRate})
	require.NoError(t, err)
	return e
}

func TestParamTableShape(t *testing.T) {
	assert.Equal(t, 18, NumParams)

	seen := make(map[string]bool, NumParams)
	for i, spec := range ParamSpecs {
		assert.NotEmpty(t, spec.Name, "param %d has no name", i)
		assert.NotEmpty(t, spec.Symbol, "param %d has no symbol", i)
		assert.False(t, seen[spec.Symbol], "duplicate symbol %q", spec.Symbol)
		seen[spec.Symbol] = true

		assert.LessOrEqual(t, spec.Min, spec.Def, "%s default below min", spec.Symbol)
		assert.GreaterOrEqual(t, spec.Max, spec.Def, "%s default above max", spec.Symbol)
	}
}

func TestParamDefaults(t *testing.T) {
	e := newTestEngine(t)
	for i, spec := range ParamSpecs {
		assert.Equal(t, spec.Def, e.GetParameterValue(i), "%s not at default", spec.Symbol)
	}
}

func TestParamRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	for i, spec := range ParamSpecs {
		e.SetParameterValue(i, spec.Max)
		assert.Equal(t, spec.Max, e.GetParameterValue(i), "%s did not round-trip", spec.Symbol)
	}
}

func TestParamOutOfRangeIndex(t *testing.T) {
	e := newTestEngine(t)

	e.SetParameterValue(-1, 1)
	e.SetParameterValue(NumParams, 1)

	assert.Zero(t, e.GetParameterValue(-1))
	assert.Zero(t, e.GetParameterValue(NumParams))
	for i, spec := range ParamSpecs {
		assert.Equal(t, spec.Def, e.GetParameterValue(i), "%s disturbed by out-of-range write", spec.Symbol)
	}
}

func TestParamIndexBySymbol(t *testing.T) {
	for i, spec := range ParamSpecs {
		got, ok := ParamIndexBySymbol(spec.Symbol)
		require.True(t, ok, "symbol %q not found", spec.Symbol)
		assert.Equal(t, i, got)
	}

	_, ok := ParamIndexBySymbol("no_such_param")
	assert.False(t, ok)
}

func TestParamWritesReachToneSection(t *testing.T) {
	e := newTestEngine(t)

	e.SetParameterValue(ParamBassFreq, 440)
	assert.InDelta(t, 440/testSampleRate, e.tone.Bass.Fc(), 1e-12)

	e.SetParameterValue(ParamMidQ, 2.5)
	assert.InDelta(t, 2.5, e.tone.Mid.Q(), 1e-12)

	e.SetParameterValue(ParamTrebleGain, 6)
	assert.InDelta(t, 6, e.tone.Treble.PeakGain(), 1e-12)

	e.SetParameterValue(ParamPregain, 0)
	assert.InDelta(t, 1.0, e.tone.Pregain.Target(), 1e-12)

	e.SetParameterValue(ParamEQPosition, 1)
	assert.Equal(t, tone.PositionPre, e.tone.Position)
	e.SetParameterValue(ParamEQPosition, 0)
	assert.Equal(t, tone.PositionPost, e.tone.Position)

	e.SetParameterValue(ParamMidType, 1)
	assert.Equal(t, tone.MidBandpass, e.tone.MidMode())
	assert.Equal(t, filter.Bandpass, e.tone.Mid.Shape())

	e.SetParameterValue(ParamNetBypass, 1)
	assert.True(t, e.tone.NetBypass)
	e.SetParameterValue(ParamNetBypass, 0)
	assert.False(t, e.tone.NetBypass)
}
