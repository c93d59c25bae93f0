package nn

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors reported while building a network from a model description.
var (
	// ErrMalformedDescription indicates the description JSON could not be
	// decoded or is missing required fields.
	ErrMalformedDescription = errors.New("malformed model description")

	// ErrUnknownArchitecture indicates no supported architecture matches
	// the description's layer stack.
	ErrUnknownArchitecture = errors.New("unknown model architecture")

	// ErrBadWeights indicates a recognized architecture whose weight
	// arrays do not have the shapes the layer stack implies.
	ErrBadWeights = errors.New("malformed model weights")
)

// Gate counts of the recurrent cells, used to slice the fused weight
// matrices the description carries.
const (
	lstmGates = 4 // input, forget, candidate, output
	gruGates  = 3 // update, reset, candidate
)

// gruBiasSets is the number of bias vectors a reset-after GRU carries
// (input-side and recurrent-side).
const gruBiasSets = 2

// Description is the decoded model description document. Only the fields
// the engine consumes are typed; layer weights stay raw until the matching
// architecture decodes them.
type Description struct {
	// InShape is the input tensor shape. Leading batch/time entries are
	// typically null; the trailing element is the per-sample input width.
	InShape []*int `json:"in_shape"`

	// InSkip, when present, marks a model trained to predict a delta that
	// is summed onto the dry input (1) instead of a full replacement (0).
	InSkip *int `json:"in_skip"`

	// OutGainDB, when present, scales the model output. Absent means
	// unity.
	OutGainDB *float64 `json:"out_gain"`

	// Layers is the architecture-specific layer stack.
	Layers []LayerDescription `json:"layers"`
}

// LayerDescription is one entry of the description's layer stack.
type LayerDescription struct {
	Type       string            `json:"type"`
	Activation string            `json:"activation"`
	Shape      []*int            `json:"shape"`
	Weights    []json.RawMessage `json:"weights"`
}

// ParseDescription decodes a model description document.
func ParseDescription(data []byte) (*Description, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}
	return &d, nil
}

// InputSize returns the trailing dimension of the input tensor shape.
func (d *Description) InputSize() (int, error) {
	if len(d.InShape) == 0 {
		return 0, fmt.Errorf("%w: missing in_shape", ErrMalformedDescription)
	}
	last := d.InShape[len(d.InShape)-1]
	if last == nil {
		return 0, fmt.Errorf("%w: in_shape trailing dimension is null", ErrMalformedDescription)
	}
	return *last, nil
}

// Build selects and constructs the concrete architecture matching the
// description's layer stack and populates its weights.
//
// The supported set is closed: exactly one recurrent layer (lstm or gru)
// followed by one dense head. Anything else is ErrUnknownArchitecture.
func Build(d *Description) (Network, error) {
	if len(d.Layers) != 2 {
		return nil, fmt.Errorf("%w: expected 2 layers, got %d", ErrUnknownArchitecture, len(d.Layers))
	}

	recurrent := d.Layers[0]
	head := d.Layers[1]

	if head.Type != "dense" {
		return nil, fmt.Errorf("%w: output layer is %q, want dense", ErrUnknownArchitecture, head.Type)
	}

	switch recurrent.Type {
	case "lstm":
		return buildLSTM(recurrent, head)
	case "gru":
		return buildGRU(recurrent, head)
	default:
		return nil, fmt.Errorf("%w: unsupported recurrent layer %q", ErrUnknownArchitecture, recurrent.Type)
	}
}

func buildLSTM(layer, head LayerDescription) (Network, error) {
	kernel, rec, bias, err := decodeRecurrentWeights(layer, "lstm")
	if err != nil {
		return nil, err
	}

	hidden := len(rec)
	if hidden == 0 || len(bias)%lstmGates != 0 || len(bias)/lstmGates != hidden {
		return nil, fmt.Errorf("%w: lstm bias length %d does not match %d hidden units",
			ErrBadWeights, len(bias), hidden)
	}
	fused := lstmGates * hidden
	if err := checkRowLengths(kernel, fused, "lstm kernel"); err != nil {
		return nil, err
	}
	if err := checkRowLengths(rec, fused, "lstm recurrent kernel"); err != nil {
		return nil, err
	}

	n := newLSTMNetwork(hidden)

	// Fused gate order in the description is input, forget, candidate,
	// output along the last axis; split and transpose so each hidden
	// unit's recurrent weights are contiguous.
	for j := 0; j < hidden; j++ {
		n.wi[j] = kernel[0][0*hidden+j]
		n.wf[j] = kernel[0][1*hidden+j]
		n.wg[j] = kernel[0][2*hidden+j]
		n.wo[j] = kernel[0][3*hidden+j]

		n.bi[j] = bias[0*hidden+j]
		n.bf[j] = bias[1*hidden+j]
		n.bg[j] = bias[2*hidden+j]
		n.bo[j] = bias[3*hidden+j]

		for k := 0; k < hidden; k++ {
			n.ui[j][k] = rec[k][0*hidden+j]
			n.uf[j][k] = rec[k][1*hidden+j]
			n.ug[j][k] = rec[k][2*hidden+j]
			n.uo[j][k] = rec[k][3*hidden+j]
		}
	}

	dense, err := decodeDenseHead(head, hidden)
	if err != nil {
		return nil, err
	}
	n.head = *dense

	return n, nil
}

func buildGRU(layer, head LayerDescription) (Network, error) {
	kernel, rec, err := decodeGRUKernels(layer)
	if err != nil {
		return nil, err
	}
	biases, err := decodeMatrix(layer.Weights[2])
	if err != nil {
		return nil, fmt.Errorf("%w: gru bias: %v", ErrBadWeights, err)
	}

	hidden := len(rec)
	fused := gruGates * hidden
	if hidden == 0 {
		return nil, fmt.Errorf("%w: gru recurrent kernel is empty", ErrBadWeights)
	}
	if err := checkRowLengths(kernel, fused, "gru kernel"); err != nil {
		return nil, err
	}
	if err := checkRowLengths(rec, fused, "gru recurrent kernel"); err != nil {
		return nil, err
	}
	if len(biases) != gruBiasSets {
		return nil, fmt.Errorf("%w: gru bias has %d sets, want %d", ErrBadWeights, len(biases), gruBiasSets)
	}
	if err := checkRowLengths(biases, fused, "gru bias"); err != nil {
		return nil, err
	}

	n := newGRUNetwork(hidden)

	// Fused gate order is update, reset, candidate along the last axis.
	for j := 0; j < hidden; j++ {
		n.wz[j] = kernel[0][0*hidden+j]
		n.wr[j] = kernel[0][1*hidden+j]
		n.wh[j] = kernel[0][2*hidden+j]

		n.bzi[j] = biases[0][0*hidden+j]
		n.bri[j] = biases[0][1*hidden+j]
		n.bhi[j] = biases[0][2*hidden+j]

		n.bzr[j] = biases[1][0*hidden+j]
		n.brr[j] = biases[1][1*hidden+j]
		n.bhr[j] = biases[1][2*hidden+j]

		for k := 0; k < hidden; k++ {
			n.uz[j][k] = rec[k][0*hidden+j]
			n.ur[j][k] = rec[k][1*hidden+j]
			n.uh[j][k] = rec[k][2*hidden+j]
		}
	}

	dense, err := decodeDenseHead(head, hidden)
	if err != nil {
		return nil, err
	}
	n.head = *dense

	return n, nil
}

// decodeRecurrentWeights decodes the common [kernel, recurrent, bias]
// triple of an LSTM layer.
func decodeRecurrentWeights(layer LayerDescription, name string) (kernel, rec [][]float32, bias []float32, err error) {
	if len(layer.Weights) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: %s layer carries %d weight arrays, want 3",
			ErrBadWeights, name, len(layer.Weights))
	}
	if kernel, err = decodeMatrix(layer.Weights[0]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s kernel: %v", ErrBadWeights, name, err)
	}
	if rec, err = decodeMatrix(layer.Weights[1]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s recurrent kernel: %v", ErrBadWeights, name, err)
	}
	if bias, err = decodeVector(layer.Weights[2]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s bias: %v", ErrBadWeights, name, err)
	}
	if len(kernel) != 1 {
		return nil, nil, nil, fmt.Errorf("%w: %s kernel has %d input rows, want 1 (scalar input)",
			ErrBadWeights, name, len(kernel))
	}
	return kernel, rec, bias, nil
}

// decodeGRUKernels decodes the kernel and recurrent kernel of a GRU layer.
func decodeGRUKernels(layer LayerDescription) (kernel, rec [][]float32, err error) {
	if len(layer.Weights) != 3 {
		return nil, nil, fmt.Errorf("%w: gru layer carries %d weight arrays, want 3",
			ErrBadWeights, len(layer.Weights))
	}
	if kernel, err = decodeMatrix(layer.Weights[0]); err != nil {
		return nil, nil, fmt.Errorf("%w: gru kernel: %v", ErrBadWeights, err)
	}
	if rec, err = decodeMatrix(layer.Weights[1]); err != nil {
		return nil, nil, fmt.Errorf("%w: gru recurrent kernel: %v", ErrBadWeights, err)
	}
	if len(kernel) != 1 {
		return nil, nil, fmt.Errorf("%w: gru kernel has %d input rows, want 1 (scalar input)",
			ErrBadWeights, len(kernel))
	}
	return kernel, rec, nil
}

func decodeDenseHead(layer LayerDescription, hidden int) (*denseHead, error) {
	if len(layer.Weights) != 2 {
		return nil, fmt.Errorf("%w: dense layer carries %d weight arrays, want 2",
			ErrBadWeights, len(layer.Weights))
	}
	kernel, err := decodeMatrix(layer.Weights[0])
	if err != nil {
		return nil, fmt.Errorf("%w: dense kernel: %v", ErrBadWeights, err)
	}
	bias, err := decodeVector(layer.Weights[1])
	if err != nil {
		return nil, fmt.Errorf("%w: dense bias: %v", ErrBadWeights, err)
	}

	if len(kernel) != hidden {
		return nil, fmt.Errorf("%w: dense kernel has %d rows, want %d hidden units",
			ErrBadWeights, len(kernel), hidden)
	}
	if err := checkRowLengths(kernel, 1, "dense kernel"); err != nil {
		return nil, err
	}
	if len(bias) != 1 {
		return nil, fmt.Errorf("%w: dense bias length %d, want 1", ErrBadWeights, len(bias))
	}

	act, ok := activationByName(layer.Activation)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported dense activation %q", ErrUnknownArchitecture, layer.Activation)
	}

	head := &denseHead{
		weights: make([]float32, hidden),
		bias:    bias[0],
		act:     act,
	}
	for j := 0; j < hidden; j++ {
		head.weights[j] = kernel[j][0]
	}
	return head, nil
}

func decodeMatrix(raw json.RawMessage) ([][]float32, error) {
	var m [][]float32
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeVector(raw json.RawMessage) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func checkRowLengths(m [][]float32, want int, name string) error {
	for i, row := range m {
		if len(row) != want {
			return fmt.Errorf("%w: %s row %d has length %d, want %d",
				ErrBadWeights, name, i, len(row), want)
		}
	}
	return nil
}
