package neuralamp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidadsp/go-neural-amp/internal/nn"
	"github.com/aidadsp/go-neural-amp/internal/testutil"
)

func zeros1(n int) []float32 { return make([]float32, n) }

func zeros2(rows, cols int) [][]float32 {
	m := make([][]float32, rows)
	for i := range m {
		m[i] = make([]float32, cols)
	}
	return m
}

// ramp2 fills a matrix with small distinct values so weight placement
// mistakes change the output.
func ramp2(rows, cols int, scale float32) [][]float32 {
	m := make([][]float32, rows)
	for i := range m {
		m[i] = make([]float32, cols)
		for j := range m[i] {
			m[i][j] = scale * float32(i*cols+j+1)
		}
	}
	return m
}

func ramp1(n int, scale float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = scale * float32(i+1)
	}
	return v
}

// modelDescription builds a well-formed description document for the
// given architecture; mutate edits it before marshalling.
func modelDescription(t *testing.T, arch string, hidden int, denseBias float32, mutate func(map[string]any)) []byte {
	t.Helper()

	gates := 4
	var bias any = zeros1(gates * hidden)
	if arch == "gru" {
		gates = 3
		bias = zeros2(2, gates*hidden)
	}

	desc := map[string]any{
		"in_shape": []any{nil, nil, 1},
		"layers": []any{
			map[string]any{
				"type":       arch,
				"activation": "tanh",
				"shape":      []any{nil, nil, hidden},
				"weights":    []any{zeros2(1, gates*hidden), zeros2(hidden, gates*hidden), bias},
			},
			map[string]any{
				"type":       "dense",
				"activation": "",
				"shape":      []any{nil, nil, 1},
				"weights":    []any{zeros2(hidden, 1), []float32{denseBias}},
			},
		},
	}
	if mutate != nil {
		mutate(desc)
	}

	data, err := json.Marshal(desc)
	require.NoError(t, err)
	return data
}

func TestLoadModelDescription(t *testing.T) {
	e := newTestEngine(t)
	require.Nil(t, e.Model())

	err := e.LoadModelDescription(modelDescription(t, "lstm", 8, 0.25, nil))
	require.NoError(t, err)

	m := e.Model()
	require.NotNil(t, m)
	assert.Equal(t, nn.ArchLSTM, m.Arch())
	assert.Equal(t, 8, m.HiddenSize())
	assert.False(t, m.InputSkip())
	assert.Equal(t, float32(1), m.OutputGain())
}

func TestLoadModelDescriptionGRU(t *testing.T) {
	e := newTestEngine(t)

	err := e.LoadModelDescription(modelDescription(t, "gru", 4, 0, nil))
	require.NoError(t, err)

	m := e.Model()
	require.NotNil(t, m)
	assert.Equal(t, nn.ArchGRU, m.Arch())
	assert.Equal(t, 4, m.HiddenSize())
}

func TestLoadModelDescriptionOptionalFields(t *testing.T) {
	e := newTestEngine(t)

	err := e.LoadModelDescription(modelDescription(t, "lstm", 2, 0, func(d map[string]any) {
		d["in_skip"] = 1
		d["out_gain"] = -6.0
	}))
	require.NoError(t, err)

	m := e.Model()
	require.NotNil(t, m)
	assert.True(t, m.InputSkip())
	assert.InDelta(t, 0.5011872336272722, float64(m.OutputGain()), 1e-6)
}

func TestLoadModelDescriptionRejections(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantErr error
	}{
		{
			name: "wide input",
			data: func(t *testing.T) []byte {
				return modelDescription(t, "lstm", 2, 0, func(d map[string]any) {
					d["in_shape"] = []any{nil, nil, 2}
				})
			},
			wantErr: ErrUnsupportedInputSize,
		},
		{
			name: "multi sample skip",
			data: func(t *testing.T) []byte {
				return modelDescription(t, "lstm", 2, 0, func(d map[string]any) {
					d["in_skip"] = 2
				})
			},
			wantErr: ErrUnsupportedSkip,
		},
		{
			name:    "not json",
			data:    func(t *testing.T) []byte { return []byte("not a model") },
			wantErr: ErrMalformedModel,
		},
		{
			name: "null input width",
			data: func(t *testing.T) []byte {
				return modelDescription(t, "lstm", 2, 0, func(d map[string]any) {
					d["in_shape"] = []any{nil, nil, nil}
				})
			},
			wantErr: ErrMalformedModel,
		},
		{
			name: "unsupported stack",
			data: func(t *testing.T) []byte {
				return modelDescription(t, "conv1d", 2, 0, nil)
			},
			wantErr: ErrUnknownArchitecture,
		},
		{
			name: "inconsistent weights",
			data: func(t *testing.T) []byte {
				return modelDescription(t, "lstm", 2, 0, func(d map[string]any) {
					layers := d["layers"].([]any)
					layer := layers[0].(map[string]any)
					layer["weights"] = []any{zeros2(1, 8), zeros2(2, 8), zeros1(7)}
				})
			},
			wantErr: ErrBadWeights,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			err := e.LoadModelDescription(tt.data(t))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, e.Model())
		})
	}
}

func TestFailedLoadPreservesActiveModel(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadModelDescription(modelDescription(t, "lstm", 4, 0.25, nil)))
	active := e.Model()

	err := e.LoadModelDescription([]byte("{broken"))
	require.Error(t, err)
	assert.Same(t, active, e.Model())
}

func TestLoadModelFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amp.json")
	require.NoError(t, os.WriteFile(path, modelDescription(t, "lstm", 4, 0, nil), 0o644))

	e := newTestEngine(t)
	require.NoError(t, e.LoadModel(path))
	require.NotNil(t, e.Model())

	err := e.LoadModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.NotNil(t, e.Model())
}

func TestSetState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amp.json")
	require.NoError(t, os.WriteFile(path, modelDescription(t, "gru", 2, 0, nil), 0o644))

	e := newTestEngine(t)

	require.NoError(t, e.SetState("someOtherKey", "ignored"))
	assert.Nil(t, e.Model())

	require.NoError(t, e.SetState(StateModelFile, path))
	assert.NotNil(t, e.Model())
}

// With all weights zero the dense head's bias fully determines the
// output, which pins down the replace and skip blend modes.
func TestModelBlendModes(t *testing.T) {
	const bias = 0.25

	e := newTestEngine(t)
	require.NoError(t, e.LoadModelDescription(modelDescription(t, "lstm", 2, bias, nil)))

	buf := []float32{0.5, -0.5, 1}
	e.Model().apply(buf)
	for i, v := range buf {
		assert.InDelta(t, bias, v, 1e-6, "replace %d", i)
	}

	require.NoError(t, e.LoadModelDescription(modelDescription(t, "lstm", 2, bias, func(d map[string]any) {
		d["in_skip"] = 1
	})))

	buf = []float32{0.5, -0.5, 1}
	e.Model().apply(buf)
	want := []float32{0.5 + bias, -0.5 + bias, 1 + bias}
	assert.InDeltaSlice(t, want, buf, 1e-6)
}

// A loaded model must already be past its initial transient: its state
// must equal that of the same network hand-fed the priming silence.
func TestLoadedModelIsPrimed(t *testing.T) {
	data := modelDescription(t, "lstm", 3, 0.1, func(d map[string]any) {
		layers := d["layers"].([]any)
		rec := layers[0].(map[string]any)
		rec["weights"] = []any{ramp2(1, 12, 0.02), ramp2(3, 12, 0.005), ramp1(12, 0.01)}
		head := layers[1].(map[string]any)
		head["weights"] = []any{ramp2(3, 1, 0.1), []float32{0.1}}
	})

	e := newTestEngine(t)
	require.NoError(t, e.LoadModelDescription(data))

	desc, err := nn.ParseDescription(data)
	require.NoError(t, err)
	ref, err := nn.Build(desc)
	require.NoError(t, err)
	for i := 0; i < modelPrimeLength; i++ {
		ref.Forward(0)
	}

	in := []float32{0.1, 0.2, -0.3, 0.4}
	got := make([]float32, len(in))
	copy(got, in)
	e.Model().apply(got)

	for i, x := range in {
		assert.InDelta(t, float64(ref.Forward(x)), float64(got[i]), 1e-6, "sample %d", i)
	}
}

// Hot swapping while another goroutine processes audio. The race detector
// is the real oracle here; the assertions just keep both sides honest.
func TestModelHotSwapUnderLoad(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadModelDescription(modelDescription(t, "lstm", 8, 0, nil)))
	e.Activate()

	var stop atomic.Bool
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		in := testutil.Sine(256, 440, testSampleRate)
		out := make([]float32, len(in))
		for !stop.Load() {
			e.Process(in, out)
		}
	}()

	for i := 0; i < 50; i++ {
		arch := "lstm"
		if i%2 == 1 {
			arch = "gru"
		}
		require.NoError(t, e.LoadModelDescription(modelDescription(t, arch, 4, 0, nil)))
	}

	stop.Store(true)
	wg.Wait()

	m := e.Model()
	require.NotNil(t, m)
	assert.Equal(t, nn.ArchGRU, m.Arch())
}
