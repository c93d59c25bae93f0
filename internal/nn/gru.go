package nn

import "github.com/tphakala/simd/f32"

// gruNetwork is a single-cell GRU layer with a dense head, specialized for
// scalar input. The bias layout follows the reset-after convention of the
// training exporters: separate input-side and recurrent-side bias vectors,
// with the reset gate applied to the biased recurrent candidate term.
type gruNetwork struct {
	hidden int

	// Input weights, one scalar weight per hidden unit and gate.
	wz, wr, wh []float32

	// Recurrent weights; row j holds the weights into unit j.
	uz, ur, uh [][]float32

	// Input-side and recurrent-side biases.
	bzi, bri, bhi []float32
	bzr, brr, bhr []float32

	head denseHead

	// Recurrent state.
	h []float32

	// Per-sample scratch.
	gateZ, cand []float32
}

func newGRUNetwork(hidden int) *gruNetwork {
	n := &gruNetwork{
		hidden: hidden,
		wz:     make([]float32, hidden),
		wr:     make([]float32, hidden),
		wh:     make([]float32, hidden),
		bzi:    make([]float32, hidden),
		bri:    make([]float32, hidden),
		bhi:    make([]float32, hidden),
		bzr:    make([]float32, hidden),
		brr:    make([]float32, hidden),
		bhr:    make([]float32, hidden),
		h:      make([]float32, hidden),
		gateZ:  make([]float32, hidden),
		cand:   make([]float32, hidden),
	}
	n.uz = makeRows(hidden)
	n.ur = makeRows(hidden)
	n.uh = makeRows(hidden)
	return n
}

func (n *gruNetwork) Arch() Arch { return ArchGRU }

func (n *gruNetwork) HiddenSize() int { return n.hidden }

func (n *gruNetwork) Reset() {
	for j := range n.h {
		n.h[j] = 0
	}
}

func (n *gruNetwork) Forward(x float32) float32 {
	h := n.h

	// Update gate and candidate both read the previous hidden state, so
	// they are staged in scratch before the state update.
	for j := 0; j < n.hidden; j++ {
		z := sigmoid(n.wz[j]*x + n.bzi[j] + f32.DotProductUnsafe(n.uz[j], h) + n.bzr[j])
		r := sigmoid(n.wr[j]*x + n.bri[j] + f32.DotProductUnsafe(n.ur[j], h) + n.brr[j])
		n.gateZ[j] = z
		n.cand[j] = tanh(n.wh[j]*x + n.bhi[j] + r*(f32.DotProductUnsafe(n.uh[j], h)+n.bhr[j]))
	}

	for j := 0; j < n.hidden; j++ {
		h[j] = n.gateZ[j]*h[j] + (1-n.gateZ[j])*n.cand[j]
	}

	return n.head.forward(h)
}
