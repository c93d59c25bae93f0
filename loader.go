package neuralamp

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aidadsp/go-neural-amp/internal/mathutil"
	"github.com/aidadsp/go-neural-amp/internal/nn"
)

// Model loading errors. Parse and build failures from the description
// surface the internal sentinels unchanged so callers can distinguish
// malformed files from unsupported ones.
var (
	// ErrUnsupportedInputSize indicates a model trained with more than
	// one input channel, which this mono engine cannot drive.
	ErrUnsupportedInputSize = errors.New("unsupported model input size")

	// ErrUnsupportedSkip indicates an in_skip value above 1.
	ErrUnsupportedSkip = errors.New("unsupported input skip")

	// ErrMalformedModel indicates a description that is not valid JSON or
	// is missing required fields.
	ErrMalformedModel = nn.ErrMalformedDescription

	// ErrUnknownArchitecture indicates a layer stack outside the
	// supported recurrent architectures.
	ErrUnknownArchitecture = nn.ErrUnknownArchitecture

	// ErrBadWeights indicates weight tensors inconsistent with the
	// declared layer shapes.
	ErrBadWeights = nn.ErrBadWeights
)

// StateModelFile is the state key carrying a model file path.
const StateModelFile = "modelFile"

// SetState applies a host state pair. Only StateModelFile is recognized;
// other keys are ignored so hosts can round-trip state they own.
func (e *Engine) SetState(key, value string) error {
	if key != StateModelFile {
		return nil
	}
	return e.LoadModel(value)
}

// LoadModel reads a model description file and swaps it in as the active
// model. On any error the active model is left untouched.
func (e *Engine) LoadModel(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading model file: %w", err)
	}
	if err := e.LoadModelDescription(data); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadModelDescription parses, validates, builds and primes a model from
// its JSON description, then publishes it to the audio path. It runs on
// the control context and may sleep while retiring the previous model;
// audio keeps flowing through the old model until the swap. On any error
// the active model is left untouched.
func (e *Engine) LoadModelDescription(data []byte) error {
	m, err := buildModel(data)
	if err != nil {
		return err
	}

	m.prime()
	e.swapModel(m)
	return nil
}

// buildModel turns a JSON description into a ready DynamicModel,
// enforcing the engine-level constraints the network factory does not
// know about.
func buildModel(data []byte) (*DynamicModel, error) {
	desc, err := nn.ParseDescription(data)
	if err != nil {
		return nil, err
	}

	inputSize, err := desc.InputSize()
	if err != nil {
		return nil, err
	}
	if inputSize > 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedInputSize, inputSize)
	}

	inputSkip := false
	if desc.InSkip != nil {
		if *desc.InSkip > 1 {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedSkip, *desc.InSkip)
		}
		inputSkip = *desc.InSkip != 0
	}

	outputGain := float32(1)
	if desc.OutGainDB != nil {
		outputGain = float32(mathutil.DBToGain(*desc.OutGainDB))
	}

	net, err := nn.Build(desc)
	if err != nil {
		return nil, err
	}

	return &DynamicModel{
		net:        net,
		inputSkip:  inputSkip,
		outputGain: outputGain,
	}, nil
}

// prime feeds silence through the fresh network so its recurrent state
// settles before it reaches the audio path, avoiding a click on swap.
func (m *DynamicModel) prime() {
	buf := make([]float32, modelPrimeLength)
	m.apply(buf)
}

// swapModel publishes the new model and waits for the audio context to
// leave the old one before letting it go out of scope.
func (e *Engine) swapModel(m *DynamicModel) {
	old := e.model.Swap(m)
	for old != nil && e.running.Load() {
		time.Sleep(swapPollInterval)
	}
}
