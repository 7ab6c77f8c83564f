package advisor

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/nn"
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// RecurrentConfig holds the RealCCodeOptimizer hyperparameters.
type RecurrentConfig struct {
	VocabSize     int
	EmbedDim      int
	HiddenSize    int // LSTM hidden size, also the first feed-forward width
	NumLayers     int
	Bidirectional bool
	NumHeads      int
	FeatureDim    int // Pooled feature width fed to the heads
	MaxSeqLen     int
	LSTMDropout   float64
	FFDropout     float64
	HeadDropout   float64
	GainScale     float32 // Gain = tanh(predictor) * GainScale
	NumClasses    int
}

// DefaultRecurrentConfig returns the production configuration.
func DefaultRecurrentConfig() RecurrentConfig {
	return RecurrentConfig{
		VocabSize:     5000,
		EmbedDim:      256,
		HiddenSize:    512,
		NumLayers:     2,
		Bidirectional: true,
		NumHeads:      8,
		FeatureDim:    256,
		MaxSeqLen:     512,
		LSTMDropout:   0.1,
		FFDropout:     0.1,
		HeadDropout:   0.2,
		GainScale:     0.3,
		NumClasses:    NumOptimizationTypes,
	}
}

// EncoderDim returns the width of the LSTM output.
func (c RecurrentConfig) EncoderDim() int {
	if c.Bidirectional {
		return 2 * c.HiddenSize
	}
	return c.HiddenSize
}

// Validate checks the configuration.
func (c RecurrentConfig) Validate() error {
	if c.VocabSize <= 0 || c.EmbedDim <= 0 || c.HiddenSize <= 0 || c.NumLayers <= 0 ||
		c.FeatureDim <= 0 || c.MaxSeqLen <= 0 || c.NumClasses <= 0 {
		return fmt.Errorf("recurrent config: dimensions must be positive: %+v", c)
	}
	if c.NumHeads <= 0 || c.EncoderDim()%c.NumHeads != 0 {
		return fmt.Errorf("recurrent config: encoder width %d not divisible by %d heads", c.EncoderDim(), c.NumHeads)
	}
	return validateDropout(c.LSTMDropout, c.FFDropout, c.HeadDropout)
}

// RecurrentAdvisor is the RealCCodeOptimizer network: a bidirectional LSTM
// encoder followed by self-attention, layer normalization, a feed-forward
// reduction, mean pooling and three heads.
type RecurrentAdvisor struct {
	Embedding   *nn.Embedding
	PosEncoding *nn.Parameter // [1, max_seq, embed_dim]
	Encoder     *nn.LSTM
	Attention   *nn.MultiHeadAttention
	Norm1       *nn.LayerNorm
	Norm2       *nn.LayerNorm
	FF          *nn.Sequential
	Dropout     *nn.Dropout
	heads

	config RecurrentConfig
}

// NewRecurrentAdvisor builds the network with random weights in eval mode.
func NewRecurrentAdvisor(cfg RecurrentConfig, rng *rand.Rand) (*RecurrentAdvisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("recurrent advisor: nil random source")
	}

	enc := cfg.EncoderDim()
	m := &RecurrentAdvisor{
		Embedding:   nn.NewEmbedding(cfg.VocabSize, cfg.EmbedDim, rng),
		PosEncoding: nn.NewParameter("pos_encoding", nn.Randn(tensor.Shape{1, cfg.MaxSeqLen, cfg.EmbedDim}, rng)),
		Encoder:     nn.NewLSTM(cfg.EmbedDim, cfg.HiddenSize, cfg.NumLayers, cfg.Bidirectional, cfg.LSTMDropout, rng),
		Attention:   nn.NewMultiHeadAttention(enc, cfg.NumHeads, rng),
		Norm1:       nn.NewLayerNorm(enc, layerNormEps),
		Norm2:       nn.NewLayerNorm(enc, layerNormEps),
		FF: nn.NewSequential(
			nn.NewLinear(enc, cfg.HiddenSize, rng),
			nn.NewReLU(),
			nn.NewDropout(cfg.FFDropout, rng),
			nn.NewLinear(cfg.HiddenSize, cfg.FeatureDim, rng),
			nn.NewReLU(),
			nn.NewDropout(cfg.FFDropout, rng),
		),
		Dropout: nn.NewDropout(cfg.HeadDropout, rng),
		heads:   newHeads(cfg.FeatureDim, cfg.NumClasses, rng),
		config:  cfg,
	}
	m.SetTraining(false)
	return m, nil
}

// ModelType returns "RealCCodeOptimizer".
func (m *RecurrentAdvisor) ModelType() string {
	return RealModelType
}

// Config returns the configuration the model was built with.
func (m *RecurrentAdvisor) Config() RecurrentConfig {
	return m.config
}

// Forward computes the advisor prediction.
//
//	x = emb(ids) + pos[:seq]
//	h = lstm(x)
//	combined = norm1(h + attn(h))
//	features = ff(norm2(combined))
//	pooled = dropout(mean_seq(features, mask))
//
// The feed-forward block narrows the encoder width to FeatureDim, so it is
// applied after norm2 rather than as a residual branch.
func (m *RecurrentAdvisor) Forward(ids [][]int32, mask [][]float32) (Prediction, error) {
	x, err := embedWithPositions(m.Embedding, m.PosEncoding, ids)
	if err != nil {
		return Prediction{}, err
	}
	s := x.Shape()
	flat, err := flattenMask(mask, s[0], s[1])
	if err != nil {
		return Prediction{}, err
	}

	h, _ := m.Encoder.Forward(x)
	attn, _ := m.Attention.Forward(h, h, h, nil)
	combined := m.Norm1.Forward(tensor.Add(h, attn))
	features := m.FF.Forward(m.Norm2.Forward(combined))

	pooled, err := tensor.MeanSeq(features, flat)
	if err != nil {
		return Prediction{}, err
	}

	scale := m.config.GainScale
	return m.predict(m.Dropout.Forward(pooled), func(v float32) float32 {
		return nn.Tanh(v) * scale
	}), nil
}

// SetTraining switches every dropout layer between training and eval mode.
func (m *RecurrentAdvisor) SetTraining(training bool) {
	m.Encoder.SetTraining(training)
	m.FF.SetTraining(training)
	m.Dropout.SetTraining(training)
}

func (m *RecurrentAdvisor) children() []named {
	c := []named{
		{"embedding", m.Embedding},
		{"encoder", m.Encoder},
		{"attention", m.Attention},
		{"norm1", m.Norm1},
		{"norm2", m.Norm2},
		{"ff", m.FF},
	}
	return append(c, m.heads.children()...)
}

// Parameters returns all trainable parameters.
func (m *RecurrentAdvisor) Parameters() []*nn.Parameter {
	return collectParameters([]*nn.Parameter{m.PosEncoding}, m.children())
}

// StateDict returns the weights keyed by PyTorch-style names.
func (m *RecurrentAdvisor) StateDict() map[string]*tensor.Tensor {
	return collectStateDict([]*nn.Parameter{m.PosEncoding}, m.children())
}

// LoadStateDict loads weights produced by StateDict.
func (m *RecurrentAdvisor) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	return loadStateDict(stateDict, []*nn.Parameter{m.PosEncoding}, m.children())
}
