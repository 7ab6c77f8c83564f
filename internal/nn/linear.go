package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/parallel"
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [..., out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	rng := tensor.NewRand(1)
//	layer := nn.NewLinear(256, 4, rng)
//	logits := layer.Forward(pooled) // [batch, 256] -> [batch, 4]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng)),
		bias:        NewParameter("bias", Zeros(tensor.Shape{outFeatures})),
	}
}

// Forward computes the output of the linear layer.
//
// Any leading dimensions are treated as a batch:
// [..., in_features] -> [..., out_features].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if shape.Last() != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got shape %v", l.inFeatures, shape))
	}

	outShape := shape.Clone()
	outShape[len(outShape)-1] = l.outFeatures
	out := tensor.New(outShape)

	affine(input.Data(), shape.Rows(), l.inFeatures,
		l.weight.Tensor().Data(), l.bias.Tensor().Data(), l.outFeatures, out.Data())
	return out
}

// minParallelWork is the number of element operations a goroutine gets at
// least when a layer splits its rows.
const minParallelWork = 1 << 15

var parallelism = parallel.DefaultConfig()

// affine writes x @ w.T + b into dst.
// x is [rows, in], w is [out, in], b is [out] (or nil), dst is [rows, out].
// Rows are split across goroutines; each row is summed in the same order
// regardless of the split.
func affine(x []float32, rows, in int, w, b []float32, out int, dst []float32) {
	cfg := parallelism
	cfg.MinChunkSize = max(minParallelWork/max(in*out, 1), 1)
	parallel.ForRange(rows, func(start, end int) {
		for r := start; r < end; r++ {
			xr := x[r*in : (r+1)*in]
			dr := dst[r*out : (r+1)*out]
			for o := 0; o < out; o++ {
				wo := w[o*in : (o+1)*in]
				var sum float32
				if b != nil {
					sum = b[o]
				}
				for i, v := range xr {
					sum += v * wo[i]
				}
				dr[o] = sum
			}
		}
	}, cfg)
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns {"weight", "bias"}.
func (l *Linear) StateDict() map[string]*tensor.Tensor {
	return paramStateDict(l.weight, l.bias)
}

// LoadStateDict loads parameters from a state dictionary.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	return loadParams(stateDict, l.weight, l.bias)
}
