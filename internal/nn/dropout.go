package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Dropout randomly zeroes elements with probability P while training and
// rescales the survivors by 1/(1-P). In eval mode it is the identity.
type Dropout struct {
	P        float64
	training bool
	rng      *rand.Rand
}

// NewDropout creates a Dropout layer in eval mode.
// Panics if p is outside [0, 1).
func NewDropout(p float64, rng *rand.Rand) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %v", p))
	}
	return &Dropout{P: p, rng: rng}
}

// SetTraining switches between training and eval behavior.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the layer is in training mode.
func (d *Dropout) Training() bool {
	return d.training
}

// Forward applies dropout. The input is returned unchanged in eval mode.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training || d.P == 0 {
		return input
	}
	keep := float32(1 / (1 - d.P))
	out := input.Clone()
	data := out.Data()
	for i := range data {
		if d.rng.Float64() < d.P {
			data[i] = 0
		}
	}
	return out.Scale(keep)
}

// Parameters returns nil.
func (d *Dropout) Parameters() []*Parameter {
	return nil
}

// StateDict returns an empty map.
func (d *Dropout) StateDict() map[string]*tensor.Tensor {
	return map[string]*tensor.Tensor{}
}

// LoadStateDict is a no-op.
func (d *Dropout) LoadStateDict(map[string]*tensor.Tensor) error {
	return nil
}
