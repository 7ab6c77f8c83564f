package nn

import (
	"math"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform(shape, -bound, bound, rng)
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return tensor.New(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape tensor.Shape) *tensor.Tensor {
	return tensor.Ones(shape)
}

// Randn creates a tensor with random values from the standard normal distribution.
func Randn(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	return tensor.Randn(shape, rng)
}

// HiddenUniform draws from U(-1/sqrt(hidden), 1/sqrt(hidden)), the default
// range for recurrent weights and biases.
func HiddenUniform(hidden int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	k := 1.0 / math.Sqrt(float64(hidden))
	return tensor.Uniform(shape, -k, k, rng)
}
