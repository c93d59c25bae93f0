// Package nn implements the closed set of neural inference architectures
// the amp engine can load: single-layer LSTM and GRU recurrent cores with
// a dense output head, the topology family produced by amp capture
// training pipelines.
//
// Networks process one scalar sample at a time and are strictly
// allocation free after construction: every scratch buffer is sized at
// build time so Forward can run on the audio thread.
package nn

import "math"

// Arch tags the concrete architecture behind a Network.
type Arch int

const (
	// ArchLSTM is a single LSTM layer followed by a dense head.
	ArchLSTM Arch = iota

	// ArchGRU is a single GRU layer followed by a dense head.
	ArchGRU
)

// String returns the architecture name as it appears in model descriptions.
func (a Arch) String() string {
	switch a {
	case ArchLSTM:
		return "lstm"
	case ArchGRU:
		return "gru"
	default:
		return "unknown"
	}
}

// Network is a built, ready-to-run inference model.
//
// Forward and Reset are not safe for concurrent use; the engine guarantees
// a single invoking goroutine via its swap protocol.
type Network interface {
	// Reset zeroes all recurrent state.
	Reset()

	// Forward advances the network by one sample and returns its output.
	// It performs no allocation.
	Forward(x float32) float32

	// Arch returns the architecture tag.
	Arch() Arch

	// HiddenSize returns the recurrent layer width.
	HiddenSize() int
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(x))))
}

func tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
