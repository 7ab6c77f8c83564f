package nn

import (
	"fmt"
	"math"

	"github.com/aletheia-ml/aletheia/internal/parallel"
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// LayerNorm applies Layer Normalization over the last dimension.
//
// Formula: Y = weight * (X - mean(X)) / sqrt(var(X) + eps) + bias
//
// The weight (scale) starts at ones and the bias (shift) at zeros.
type LayerNorm struct {
	Weight  *Parameter // scale [d_model]
	Bias    *Parameter // shift [d_model]
	Epsilon float32
	dim     int
}

// NewLayerNorm creates a new LayerNorm layer.
//
// Parameters:
//   - normalizedShape: size of the last dimension (feature dimension)
//   - epsilon: small constant for numerical stability (typically 1e-5)
func NewLayerNorm(normalizedShape int, epsilon float32) *LayerNorm {
	return &LayerNorm{
		Weight:  NewParameter("weight", Ones(tensor.Shape{normalizedShape})),
		Bias:    NewParameter("bias", Zeros(tensor.Shape{normalizedShape})),
		Epsilon: epsilon,
		dim:     normalizedShape,
	}
}

// Forward normalizes every innermost vector of x.
func (l *LayerNorm) Forward(x *tensor.Tensor) *tensor.Tensor {
	if x.Shape().Last() != l.dim {
		panic(fmt.Sprintf("LayerNorm.Forward: expected last dim %d, got shape %v", l.dim, x.Shape()))
	}

	out := tensor.New(x.Shape())
	gamma := l.Weight.Tensor().Data()
	beta := l.Bias.Tensor().Data()
	n := float32(l.dim)

	cfg := parallelism
	cfg.MinChunkSize = max(minParallelWork/max(3*l.dim, 1), 1)
	parallel.For(x.Shape().Rows(), func(r int) {
		src := x.Row(r)
		dst := out.Row(r)

		var mean float32
		for _, v := range src {
			mean += v
		}
		mean /= n

		var variance float32
		for _, v := range src {
			d := v - mean
			variance += d * d
		}
		variance /= n

		inv := float32(1 / math.Sqrt(float64(variance+l.Epsilon)))
		for i, v := range src {
			dst[i] = (v-mean)*inv*gamma[i] + beta[i]
		}
	}, cfg)
	return out
}

// Parameters returns the learnable parameters (weight and bias).
func (l *LayerNorm) Parameters() []*Parameter {
	return []*Parameter{l.Weight, l.Bias}
}

// StateDict returns {"weight", "bias"}.
func (l *LayerNorm) StateDict() map[string]*tensor.Tensor {
	return paramStateDict(l.Weight, l.Bias)
}

// LoadStateDict loads the scale and shift.
func (l *LayerNorm) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	return loadParams(stateDict, l.Weight, l.Bias)
}
