// Package nn implements the neural network modules used by the ALETHEIA
// advisor models.
//
// This package provides building blocks for constructing networks:
//   - Module interface: parameters and flat state dictionaries
//   - Parameter: named weight tensors
//   - Linear, Embedding, LayerNorm: basic layers
//   - MultiHeadAttention and LSTM: sequence mixers
//   - ReLU, Dropout, Sequential: glue
//
// State dictionary keys follow the dotted PyTorch convention
// ("encoder.weight_ih_l0_reverse", "ff.3.bias") so checkpoints line up with
// the layer layout of the PyTorch reference networks.
//
// Modules are created in eval mode. Dropout only acts after SetTraining(true).
package nn

import (
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every module must implement:
//   - Parameters: Return all trainable parameters
//   - StateDict: Return a flat map of parameter names to tensors
//   - LoadStateDict: Copy tensors from such a map back into the parameters
type Module interface {
	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter

	// StateDict returns a map of parameter names to tensors.
	// The tensors are the live parameter storage, not copies.
	StateDict() map[string]*tensor.Tensor

	// LoadStateDict copies tensors from stateDict into the module.
	// Every parameter must be present with a matching shape.
	LoadStateDict(stateDict map[string]*tensor.Tensor) error
}

// Layer is a Module with a single-tensor forward pass.
type Layer interface {
	Module

	// Forward computes the output of the layer given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor
}

// Trainer is implemented by modules whose behavior differs between
// training and inference (dropout).
type Trainer interface {
	SetTraining(training bool)
}
