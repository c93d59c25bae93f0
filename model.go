package neuralamp

import "github.com/aidadsp/go-neural-amp/internal/nn"

// DynamicModel is a loaded, primed neural amp model ready for the audio
// path: the recurrent network plus the blend and level decisions baked in
// at load time.
type DynamicModel struct {
	net        nn.Network
	inputSkip  bool
	outputGain float32
}

// Arch reports the model's recurrent architecture.
func (m *DynamicModel) Arch() nn.Arch { return m.net.Arch() }

// HiddenSize reports the recurrent layer width.
func (m *DynamicModel) HiddenSize() int { return m.net.HiddenSize() }

// InputSkip reports whether the model output is summed with the dry
// signal instead of replacing it. Skip models are trained on the
// difference between input and target, so the dry path carries the base
// tone.
func (m *DynamicModel) InputSkip() bool { return m.inputSkip }

// OutputGain returns the linear level correction applied after
// inference.
func (m *DynamicModel) OutputGain() float32 { return m.outputGain }

// apply runs the network over the buffer in place, one sample at a time.
func (m *DynamicModel) apply(buf []float32) {
	if m.inputSkip {
		for i, x := range buf {
			buf[i] = x + m.net.Forward(x)*m.outputGain
		}
		return
	}
	for i, x := range buf {
		buf[i] = m.net.Forward(x) * m.outputGain
	}
}

// reset clears the network's recurrent state.
func (m *DynamicModel) reset() { m.net.Reset() }

// Model returns the currently active model, or nil when none is loaded.
func (e *Engine) Model() *DynamicModel {
	return e.model.Load()
}
