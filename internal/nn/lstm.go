package nn

import "github.com/tphakala/simd/f32"

// lstmNetwork is a single-cell LSTM layer with a dense head, specialized
// for scalar input. Weight matrices are stored transposed per gate so the
// recurrent contribution of one hidden unit is a contiguous dot product.
type lstmNetwork struct {
	hidden int

	// Input weights, one scalar weight per hidden unit and gate.
	wi, wf, wg, wo []float32

	// Recurrent weights; row j holds the weights from the previous hidden
	// state into unit j. Rows are sub-slices of one backing array.
	ui, uf, ug, uo [][]float32

	// Gate biases.
	bi, bf, bg, bo []float32

	head denseHead

	// Recurrent state.
	h, c []float32

	// Per-sample gate scratch, preallocated so Forward never allocates.
	gateI, gateF, gateG, gateO []float32
}

func newLSTMNetwork(hidden int) *lstmNetwork {
	n := &lstmNetwork{
		hidden: hidden,
		wi:     make([]float32, hidden),
		wf:     make([]float32, hidden),
		wg:     make([]float32, hidden),
		wo:     make([]float32, hidden),
		bi:     make([]float32, hidden),
		bf:     make([]float32, hidden),
		bg:     make([]float32, hidden),
		bo:     make([]float32, hidden),
		h:      make([]float32, hidden),
		c:      make([]float32, hidden),
		gateI:  make([]float32, hidden),
		gateF:  make([]float32, hidden),
		gateG:  make([]float32, hidden),
		gateO:  make([]float32, hidden),
	}
	n.ui = makeRows(hidden)
	n.uf = makeRows(hidden)
	n.ug = makeRows(hidden)
	n.uo = makeRows(hidden)
	return n
}

// makeRows allocates an n-by-n row-sliced matrix over one backing array.
func makeRows(n int) [][]float32 {
	backing := make([]float32, n*n)
	rows := make([][]float32, n)
	for j := 0; j < n; j++ {
		rows[j] = backing[j*n : (j+1)*n]
	}
	return rows
}

func (n *lstmNetwork) Arch() Arch { return ArchLSTM }

func (n *lstmNetwork) HiddenSize() int { return n.hidden }

func (n *lstmNetwork) Reset() {
	for j := range n.h {
		n.h[j] = 0
		n.c[j] = 0
	}
}

func (n *lstmNetwork) Forward(x float32) float32 {
	h := n.h

	// All four gates read the previous hidden state, so they are computed
	// into scratch before any state is overwritten.
	for j := 0; j < n.hidden; j++ {
		n.gateI[j] = sigmoid(n.wi[j]*x + n.bi[j] + f32.DotProductUnsafe(n.ui[j], h))
		n.gateF[j] = sigmoid(n.wf[j]*x + n.bf[j] + f32.DotProductUnsafe(n.uf[j], h))
		n.gateG[j] = tanh(n.wg[j]*x + n.bg[j] + f32.DotProductUnsafe(n.ug[j], h))
		n.gateO[j] = sigmoid(n.wo[j]*x + n.bo[j] + f32.DotProductUnsafe(n.uo[j], h))
	}

	for j := 0; j < n.hidden; j++ {
		n.c[j] = n.gateF[j]*n.c[j] + n.gateI[j]*n.gateG[j]
		h[j] = n.gateO[j] * tanh(n.c[j])
	}

	return n.head.forward(h)
}
