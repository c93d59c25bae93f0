package nn

import "github.com/tphakala/simd/f32"

// activation is a pointwise output nonlinearity for the dense head.
type activation func(float32) float32

func actLinear(x float32) float32 { return x }

func actReLU(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

// activationByName resolves a description's activation field. An empty
// name means linear, matching the training exporters.
func activationByName(name string) (activation, bool) {
	switch name {
	case "", "linear":
		return actLinear, true
	case "tanh":
		return tanh, true
	case "relu":
		return actReLU, true
	case "sigmoid":
		return sigmoid, true
	default:
		return nil, false
	}
}

// denseHead collapses the recurrent hidden state to the single output
// sample: a dot product, a bias and an optional nonlinearity.
type denseHead struct {
	weights []float32 // one weight per hidden unit
	bias    float32
	act     activation
}

func (d *denseHead) forward(hidden []float32) float32 {
	// weights and hidden always have equal length by construction.
	return d.act(f32.DotProductUnsafe(d.weights, hidden) + d.bias)
}
