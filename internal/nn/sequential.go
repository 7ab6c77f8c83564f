package nn

import (
	"fmt"
	"strconv"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Sequential is a container module that chains multiple layers together.
//
// Each layer's output becomes the next layer's input.
//
// Example:
//
//	ff := nn.NewSequential(
//	    nn.NewLinear(256, 512, rng),
//	    nn.NewReLU(),
//	    nn.NewDropout(0.1, rng),
//	    nn.NewLinear(512, 256, rng),
//	)
//
// State dictionary keys are prefixed with the layer index, so the example
// above produces "0.weight", "0.bias", "3.weight" and "3.bias".
type Sequential struct {
	layers []Layer
}

// NewSequential creates a new Sequential container.
func NewSequential(layers ...Layer) *Sequential {
	return &Sequential{layers: layers}
}

// Forward applies all layers in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, layer := range s.layers {
		output = layer.Forward(output)
	}
	return output
}

// Parameters returns all trainable parameters from all layers.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// SetTraining propagates the mode to every layer that cares.
func (s *Sequential) SetTraining(training bool) {
	for _, layer := range s.layers {
		if t, ok := layer.(Trainer); ok {
			t.SetTraining(training)
		}
	}
}

// Len returns the number of layers in the sequence.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Layer(index int) Layer {
	if index < 0 || index >= len(s.layers) {
		panic("Sequential.Layer: index out of bounds")
	}
	return s.layers[index]
}

// StateDict returns a map of index-prefixed parameter names to tensors.
func (s *Sequential) StateDict() map[string]*tensor.Tensor {
	stateDict := make(map[string]*tensor.Tensor)
	for i, layer := range s.layers {
		PrefixStateDict(stateDict, strconv.Itoa(i), layer.StateDict())
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
//
// Parameters should be prefixed with their layer index (e.g., "0.weight").
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	for i, layer := range s.layers {
		if len(layer.Parameters()) == 0 {
			continue
		}
		if err := layer.LoadStateDict(SubStateDict(stateDict, strconv.Itoa(i))); err != nil {
			return fmt.Errorf("failed to load layer %d: %w", i, err)
		}
	}
	return nil
}
