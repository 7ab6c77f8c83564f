// Package advisor defines the two ALETHEIA optimization-advisor networks.
//
// Both networks read a batch of token ids and produce a Prediction with one
// logit per optimization type, a confidence score and a predicted
// performance gain. Their state dictionaries use the PyTorch module naming
// ("embedding.weight", "encoder.weight_ih_l0_reverse", ...).
package advisor

import (
	"fmt"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/nn"
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Model type names recorded in checkpoint headers.
const (
	FinalModelType = "AletheiaFinalModel"
	RealModelType  = "RealCCodeOptimizer"
)

// NumOptimizationTypes is the classifier width: loop, memory access,
// function inlining and branch optimization.
const NumOptimizationTypes = 4

const layerNormEps = 1e-5

// Prediction holds the outputs of an advisor forward pass.
type Prediction struct {
	Logits          *tensor.Tensor // [batch, classes]
	Confidence      *tensor.Tensor // [batch, 1], in (0, 1)
	PerformanceGain *tensor.Tensor // [batch, 1]
}

// Model is an advisor network.
type Model interface {
	nn.Module
	nn.Trainer

	// ModelType returns the architecture name.
	ModelType() string

	// Forward runs the network on ids [batch][seq]. mask, when non-nil, has
	// the same shape and weights the sequence mean pool.
	Forward(ids [][]int32, mask [][]float32) (Prediction, error)
}

// New constructs a model of the named type with its default configuration.
func New(modelType string, rng *rand.Rand) (Model, error) {
	switch modelType {
	case FinalModelType:
		return NewTransformerAdvisor(DefaultTransformerConfig(), rng)
	case RealModelType:
		return NewRecurrentAdvisor(DefaultRecurrentConfig(), rng)
	default:
		return nil, fmt.Errorf("unknown model type %q", modelType)
	}
}

// named is a child module and its state dict prefix.
type named struct {
	name   string
	module nn.Module
}

func collectParameters(own []*nn.Parameter, children []named) []*nn.Parameter {
	params := append([]*nn.Parameter(nil), own...)
	for _, c := range children {
		params = append(params, c.module.Parameters()...)
	}
	return params
}

func collectStateDict(own []*nn.Parameter, children []named) map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	for _, p := range own {
		sd[p.Name()] = p.Tensor()
	}
	for _, c := range children {
		nn.PrefixStateDict(sd, c.name, c.module.StateDict())
	}
	return sd
}

// loadStateDict loads own parameters and children, rejecting unknown keys.
func loadStateDict(stateDict map[string]*tensor.Tensor, own []*nn.Parameter, children []named) error {
	expected := collectStateDict(own, children)
	for _, name := range nn.SortedKeys(stateDict) {
		if _, ok := expected[name]; !ok {
			return fmt.Errorf("unexpected key %s in state dict", name)
		}
	}

	for _, p := range own {
		src, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		if err := p.Load(src); err != nil {
			return err
		}
	}
	for _, c := range children {
		if err := c.module.LoadStateDict(nn.SubStateDict(stateDict, c.name)); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

// embedWithPositions looks up ids and adds the learned positional encoding
// pos [1, maxSeq, dim].
func embedWithPositions(emb *nn.Embedding, pos *nn.Parameter, ids [][]int32) (*tensor.Tensor, error) {
	maxSeq := pos.Tensor().Shape()[1]
	for i, row := range ids {
		if len(row) > maxSeq {
			return nil, fmt.Errorf("sequence %d has length %d, exceeds maximum %d", i, len(row), maxSeq)
		}
	}

	x, err := emb.Forward(ids)
	if err != nil {
		return nil, err
	}

	s := x.Shape()
	batch, seq, dim := s[0], s[1], s[2]
	posData := pos.Tensor().Data()
	data := x.Data()
	for b := 0; b < batch; b++ {
		for t := 0; t < seq; t++ {
			row := data[(b*seq+t)*dim : (b*seq+t+1)*dim]
			p := posData[t*dim : (t+1)*dim]
			for i := range row {
				row[i] += p[i]
			}
		}
	}
	return x, nil
}

// flattenMask converts a [batch][seq] mask into the flat form MeanSeq takes.
func flattenMask(mask [][]float32, batch, seq int) ([]float32, error) {
	if mask == nil {
		return nil, nil
	}
	if len(mask) != batch {
		return nil, fmt.Errorf("mask has %d rows, want %d", len(mask), batch)
	}
	flat := make([]float32, 0, batch*seq)
	for i, row := range mask {
		if len(row) != seq {
			return nil, fmt.Errorf("mask row %d has length %d, want %d", i, len(row), seq)
		}
		flat = append(flat, row...)
	}
	return flat, nil
}

// heads are the three output projections shared by both networks.
type heads struct {
	Classifier           *nn.Linear
	ConfidenceHead       *nn.Linear
	PerformancePredictor *nn.Linear
}

func newHeads(features, classes int, rng *rand.Rand) heads {
	return heads{
		Classifier:           nn.NewLinear(features, classes, rng),
		ConfidenceHead:       nn.NewLinear(features, 1, rng),
		PerformancePredictor: nn.NewLinear(features, 1, rng),
	}
}

func (h heads) children() []named {
	return []named{
		{"classifier", h.Classifier},
		{"confidence_head", h.ConfidenceHead},
		{"performance_predictor", h.PerformancePredictor},
	}
}

// predict applies the heads to pooled [batch, features]. gain post-processes
// the raw predictor output; nil keeps it unchanged.
func (h heads) predict(pooled *tensor.Tensor, gain func(float32) float32) Prediction {
	perf := h.PerformancePredictor.Forward(pooled)
	if gain != nil {
		perf = perf.Apply(gain)
	}
	return Prediction{
		Logits:          h.Classifier.Forward(pooled),
		Confidence:      h.ConfidenceHead.Forward(pooled).Apply(nn.Sigmoid),
		PerformanceGain: perf,
	}
}
