package tensor

import "math/rand/v2"

// Randn creates a tensor with values drawn from the standard normal distribution N(0, 1).
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = float32(rng.NormFloat64())
	}
	return t
}

// Uniform creates a tensor with values drawn from U(lo, hi).
func Uniform(shape Shape, lo, hi float64, rng *rand.Rand) *Tensor {
	t := New(shape)
	span := hi - lo
	for i := range t.data {
		t.data[i] = float32(lo + rng.Float64()*span)
	}
	return t
}

// NewRand returns a deterministic PCG source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
