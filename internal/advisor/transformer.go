package advisor

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/nn"
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// TransformerConfig holds the AletheiaFinalModel hyperparameters.
type TransformerConfig struct {
	VocabSize   int     // Token vocabulary size
	EmbedDim    int     // Model width
	NumHeads    int     // Attention heads per block
	FFDim       int     // Feed-forward hidden width
	MaxSeqLen   int     // Positional encoding length
	FFDropout   float64 // Dropout inside the feed-forward blocks
	HeadDropout float64 // Dropout on the pooled features
	NumClasses  int     // Optimization types
}

// DefaultTransformerConfig returns the production configuration.
func DefaultTransformerConfig() TransformerConfig {
	return TransformerConfig{
		VocabSize:   5000,
		EmbedDim:    256,
		NumHeads:    8,
		FFDim:       512,
		MaxSeqLen:   512,
		FFDropout:   0.1,
		HeadDropout: 0.2,
		NumClasses:  NumOptimizationTypes,
	}
}

// Validate checks the configuration.
func (c TransformerConfig) Validate() error {
	if c.VocabSize <= 0 || c.EmbedDim <= 0 || c.FFDim <= 0 || c.MaxSeqLen <= 0 || c.NumClasses <= 0 {
		return fmt.Errorf("transformer config: dimensions must be positive: %+v", c)
	}
	if c.NumHeads <= 0 || c.EmbedDim%c.NumHeads != 0 {
		return fmt.Errorf("transformer config: embed_dim %d not divisible by %d heads", c.EmbedDim, c.NumHeads)
	}
	return validateDropout(c.FFDropout, c.HeadDropout)
}

func validateDropout(ps ...float64) error {
	for _, p := range ps {
		if p < 0 || p >= 1 {
			return fmt.Errorf("dropout probability %v outside [0, 1)", p)
		}
	}
	return nil
}

// TransformerAdvisor is the AletheiaFinalModel network: two self-attention
// blocks around a feed-forward block, each with a residual connection and
// layer normalization, followed by mean pooling and three heads.
//
// FF2 is part of the parameter set but not of the forward pass.
type TransformerAdvisor struct {
	Embedding   *nn.Embedding
	PosEncoding *nn.Parameter // [1, max_seq, embed_dim]
	Attention1  *nn.MultiHeadAttention
	Attention2  *nn.MultiHeadAttention
	FF1         *nn.Sequential
	FF2         *nn.Sequential
	Norm1       *nn.LayerNorm
	Norm2       *nn.LayerNorm
	Norm3       *nn.LayerNorm
	Dropout     *nn.Dropout
	heads

	config TransformerConfig
}

// NewTransformerAdvisor builds the network with random weights in eval mode.
func NewTransformerAdvisor(cfg TransformerConfig, rng *rand.Rand) (*TransformerAdvisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("transformer advisor: nil random source")
	}

	feedForward := func() *nn.Sequential {
		return nn.NewSequential(
			nn.NewLinear(cfg.EmbedDim, cfg.FFDim, rng),
			nn.NewReLU(),
			nn.NewDropout(cfg.FFDropout, rng),
			nn.NewLinear(cfg.FFDim, cfg.EmbedDim, rng),
		)
	}

	m := &TransformerAdvisor{
		Embedding:   nn.NewEmbedding(cfg.VocabSize, cfg.EmbedDim, rng),
		PosEncoding: nn.NewParameter("pos_encoding", nn.Randn(tensor.Shape{1, cfg.MaxSeqLen, cfg.EmbedDim}, rng)),
		Attention1:  nn.NewMultiHeadAttention(cfg.EmbedDim, cfg.NumHeads, rng),
		Attention2:  nn.NewMultiHeadAttention(cfg.EmbedDim, cfg.NumHeads, rng),
		FF1:         feedForward(),
		FF2:         feedForward(),
		Norm1:       nn.NewLayerNorm(cfg.EmbedDim, layerNormEps),
		Norm2:       nn.NewLayerNorm(cfg.EmbedDim, layerNormEps),
		Norm3:       nn.NewLayerNorm(cfg.EmbedDim, layerNormEps),
		Dropout:     nn.NewDropout(cfg.HeadDropout, rng),
		heads:       newHeads(cfg.EmbedDim, cfg.NumClasses, rng),
		config:      cfg,
	}
	m.SetTraining(false)
	return m, nil
}

// ModelType returns "AletheiaFinalModel".
func (m *TransformerAdvisor) ModelType() string {
	return FinalModelType
}

// Config returns the configuration the model was built with.
func (m *TransformerAdvisor) Config() TransformerConfig {
	return m.config
}

// Forward computes the advisor prediction.
//
//	x = emb(ids) + pos[:seq]
//	x = norm1(x + attn1(x))
//	x = norm2(x + ff1(x))
//	x = norm3(x + attn2(x))
//	pooled = dropout(mean_seq(x, mask))
func (m *TransformerAdvisor) Forward(ids [][]int32, mask [][]float32) (Prediction, error) {
	x, err := embedWithPositions(m.Embedding, m.PosEncoding, ids)
	if err != nil {
		return Prediction{}, err
	}
	s := x.Shape()
	flat, err := flattenMask(mask, s[0], s[1])
	if err != nil {
		return Prediction{}, err
	}

	attn, _ := m.Attention1.Forward(x, x, x, nil)
	x = m.Norm1.Forward(tensor.Add(x, attn))
	x = m.Norm2.Forward(tensor.Add(x, m.FF1.Forward(x)))
	attn, _ = m.Attention2.Forward(x, x, x, nil)
	x = m.Norm3.Forward(tensor.Add(x, attn))

	pooled, err := tensor.MeanSeq(x, flat)
	if err != nil {
		return Prediction{}, err
	}
	return m.predict(m.Dropout.Forward(pooled), nil), nil
}

// SetTraining switches every dropout layer between training and eval mode.
func (m *TransformerAdvisor) SetTraining(training bool) {
	m.FF1.SetTraining(training)
	m.FF2.SetTraining(training)
	m.Dropout.SetTraining(training)
}

func (m *TransformerAdvisor) children() []named {
	c := []named{
		{"embedding", m.Embedding},
		{"attention1", m.Attention1},
		{"attention2", m.Attention2},
		{"ff1", m.FF1},
		{"ff2", m.FF2},
		{"norm1", m.Norm1},
		{"norm2", m.Norm2},
		{"norm3", m.Norm3},
	}
	return append(c, m.heads.children()...)
}

// Parameters returns all trainable parameters.
func (m *TransformerAdvisor) Parameters() []*nn.Parameter {
	return collectParameters([]*nn.Parameter{m.PosEncoding}, m.children())
}

// StateDict returns the weights keyed by PyTorch-style names.
func (m *TransformerAdvisor) StateDict() map[string]*tensor.Tensor {
	return collectStateDict([]*nn.Parameter{m.PosEncoding}, m.children())
}

// LoadStateDict loads weights produced by StateDict.
func (m *TransformerAdvisor) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	return loadStateDict(stateDict, []*nn.Parameter{m.PosEncoding}, m.children())
}
