package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// LSTM is a multi-layer, optionally bidirectional, batch-first long
// short-term memory network.
//
// Each layer and direction owns four parameters with gates stacked in the
// order input, forget, cell, output:
//
//	weight_ih_l{k}[_reverse]  [4*hidden, layer_input]
//	weight_hh_l{k}[_reverse]  [4*hidden, hidden]
//	bias_ih_l{k}[_reverse]    [4*hidden]
//	bias_hh_l{k}[_reverse]    [4*hidden]
//
// Layer 0 reads input_size features; deeper layers read hidden*directions.
// All weights and biases start in U(-1/sqrt(hidden), 1/sqrt(hidden)).
type LSTM struct {
	InputSize     int
	HiddenSize    int
	NumLayers     int
	Bidirectional bool
	Dropout       *Dropout // applied between layers while training

	cells []*lstmCell // indexed layer*directions + direction
}

// lstmCell holds the parameters of one layer/direction pair.
type lstmCell struct {
	weightIH *Parameter
	weightHH *Parameter
	biasIH   *Parameter
	biasHH   *Parameter
	inSize   int
}

// LSTMState carries the final hidden and cell states, each shaped
// [layers*directions, batch, hidden].
type LSTMState struct {
	H *tensor.Tensor
	C *tensor.Tensor
}

// NewLSTM creates an LSTM.
//
// Panics if any size is not positive or dropout is outside [0, 1).
func NewLSTM(inputSize, hiddenSize, numLayers int, bidirectional bool, dropout float64, rng *rand.Rand) *LSTM {
	if inputSize <= 0 || hiddenSize <= 0 || numLayers <= 0 {
		panic(fmt.Sprintf("LSTM: invalid sizes input=%d hidden=%d layers=%d", inputSize, hiddenSize, numLayers))
	}

	l := &LSTM{
		InputSize:     inputSize,
		HiddenSize:    hiddenSize,
		NumLayers:     numLayers,
		Bidirectional: bidirectional,
		Dropout:       NewDropout(dropout, rng),
	}

	dirs := l.directions()
	gates := 4 * hiddenSize
	for layer := 0; layer < numLayers; layer++ {
		in := inputSize
		if layer > 0 {
			in = hiddenSize * dirs
		}
		for d := 0; d < dirs; d++ {
			suffix := fmt.Sprintf("_l%d", layer)
			if d == 1 {
				suffix += "_reverse"
			}
			l.cells = append(l.cells, &lstmCell{
				weightIH: NewParameter("weight_ih"+suffix, HiddenUniform(hiddenSize, tensor.Shape{gates, in}, rng)),
				weightHH: NewParameter("weight_hh"+suffix, HiddenUniform(hiddenSize, tensor.Shape{gates, hiddenSize}, rng)),
				biasIH:   NewParameter("bias_ih"+suffix, HiddenUniform(hiddenSize, tensor.Shape{gates}, rng)),
				biasHH:   NewParameter("bias_hh"+suffix, HiddenUniform(hiddenSize, tensor.Shape{gates}, rng)),
				inSize:   in,
			})
		}
	}
	return l
}

func (l *LSTM) directions() int {
	if l.Bidirectional {
		return 2
	}
	return 1
}

// OutputSize returns the feature size of the output sequence.
func (l *LSTM) OutputSize() int {
	return l.HiddenSize * l.directions()
}

// SetTraining toggles inter-layer dropout.
func (l *LSTM) SetTraining(training bool) {
	l.Dropout.SetTraining(training)
}

// Forward runs the network over x [batch, seq, input_size] starting from
// zero states.
//
// Returns the top layer's output [batch, seq, hidden*directions] and the
// final states of every layer and direction.
func (l *LSTM) Forward(x *tensor.Tensor) (*tensor.Tensor, LSTMState) {
	s := x.Shape()
	if len(s) != 3 || s[2] != l.InputSize {
		panic(fmt.Sprintf("LSTM.Forward: expected [batch, seq, %d], got %v", l.InputSize, s))
	}
	batch, seq := s[0], s[1]
	dirs := l.directions()
	h := l.HiddenSize

	state := LSTMState{
		H: tensor.New(tensor.Shape{l.NumLayers * dirs, batch, h}),
		C: tensor.New(tensor.Shape{l.NumLayers * dirs, batch, h}),
	}

	input := x
	for layer := 0; layer < l.NumLayers; layer++ {
		out := tensor.New(tensor.Shape{batch, seq, h * dirs})
		for d := 0; d < dirs; d++ {
			idx := layer*dirs + d
			cell := l.cells[idx]
			for b := 0; b < batch; b++ {
				hLast, cLast := cell.run(input.Data(), b, seq, h, d == 1, out.Data(), h*dirs, d*h)
				copy(state.H.Data()[(idx*batch+b)*h:], hLast)
				copy(state.C.Data()[(idx*batch+b)*h:], cLast)
			}
		}
		if layer < l.NumLayers-1 {
			out = l.Dropout.Forward(out)
		}
		input = out
	}
	return input, state
}

// run processes one batch row in one direction and writes hidden states into
// dst at column offset col of rows with stride width. Returns the final h and c.
func (c *lstmCell) run(src []float32, b, seq, h int, reverse bool, dst []float32, width, col int) ([]float32, []float32) {
	wih := c.weightIH.Tensor().Data()
	whh := c.weightHH.Tensor().Data()
	bih := c.biasIH.Tensor().Data()
	bhh := c.biasHH.Tensor().Data()

	hPrev := make([]float32, h)
	cPrev := make([]float32, h)
	gates := make([]float32, 4*h)
	recur := make([]float32, 4*h)

	for step := 0; step < seq; step++ {
		t := step
		if reverse {
			t = seq - 1 - step
		}
		xt := src[(b*seq+t)*c.inSize : (b*seq+t+1)*c.inSize]
		affine(xt, 1, c.inSize, wih, bih, 4*h, gates)
		affine(hPrev, 1, h, whh, bhh, 4*h, recur)

		for j := 0; j < h; j++ {
			ig := Sigmoid(gates[j] + recur[j])
			fg := Sigmoid(gates[h+j] + recur[h+j])
			gg := Tanh(gates[2*h+j] + recur[2*h+j])
			og := Sigmoid(gates[3*h+j] + recur[3*h+j])
			cPrev[j] = fg*cPrev[j] + ig*gg
			hPrev[j] = og * Tanh(cPrev[j])
		}
		copy(dst[(b*seq+t)*width+col:(b*seq+t)*width+col+h], hPrev)
	}
	return hPrev, cPrev
}

// Parameters returns every weight and bias, layer by layer.
func (l *LSTM) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 4*len(l.cells))
	for _, c := range l.cells {
		params = append(params, c.weightIH, c.weightHH, c.biasIH, c.biasHH)
	}
	return params
}

// StateDict returns the PyTorch-named LSTM parameters.
func (l *LSTM) StateDict() map[string]*tensor.Tensor {
	return paramStateDict(l.Parameters()...)
}

// LoadStateDict loads every layer and direction.
func (l *LSTM) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	return loadParams(stateDict, l.Parameters()...)
}
