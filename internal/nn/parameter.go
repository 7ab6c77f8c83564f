package nn

import (
	"fmt"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters typically represent weights and biases of layers. The name is
// the key used inside the owning module's state dictionary (e.g., "weight").
type Parameter struct {
	name   string
	tensor *tensor.Tensor
}

// NewParameter creates a new named parameter around an initialized tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Load copies src into the parameter after checking its shape.
func (p *Parameter) Load(src *tensor.Tensor) error {
	if !src.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", p.name, p.tensor.Shape(), src.Shape())
	}
	copy(p.tensor.Data(), src.Data())
	return nil
}
