package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// MultiHeadAttention implements batch-first multi-head attention.
//
// Architecture:
//
//	MHA(Q, K, V) = Concat(head_1, ..., head_h) * W_O
//	head_i = softmax(Q*W_Q_i (K*W_K_i)^T / sqrt(d)) V*W_V_i
//
// The Q, K and V projections are packed into one [3*embed_dim, embed_dim]
// matrix (InProjWeight, rows ordered Q, K, V) with a matching bias. The output
// projection is a regular Linear layer stored under "out_proj".
//
// Example:
//
//	mha := nn.NewMultiHeadAttention(256, 8, rng)
//	out, weights := mha.Forward(x, x, x, nil) // self-attention
type MultiHeadAttention struct {
	InProjWeight *Parameter // [3*embed_dim, embed_dim]
	InProjBias   *Parameter // [3*embed_dim]
	OutProj      *Linear
	NumHeads     int
	HeadDim      int
	EmbedDim     int
}

// NewMultiHeadAttention creates a new multi-head attention module.
//
// Panics if embedDim is not divisible by numHeads.
func NewMultiHeadAttention(embedDim, numHeads int, rng *rand.Rand) *MultiHeadAttention {
	if numHeads <= 0 || embedDim%numHeads != 0 {
		panic(fmt.Sprintf("MultiHeadAttention: embed_dim (%d) must be divisible by num_heads (%d)", embedDim, numHeads))
	}

	inShape := tensor.Shape{3 * embedDim, embedDim}
	outProj := NewLinear(embedDim, embedDim, rng)

	return &MultiHeadAttention{
		InProjWeight: NewParameter("in_proj_weight", Xavier(embedDim, 3*embedDim, inShape, rng)),
		InProjBias:   NewParameter("in_proj_bias", Zeros(tensor.Shape{3 * embedDim})),
		OutProj:      outProj,
		NumHeads:     numHeads,
		HeadDim:      embedDim / numHeads,
		EmbedDim:     embedDim,
	}
}

// Forward computes multi-head attention.
//
// Args:
//   - query: [batch, seq_q, embed_dim]
//   - key: [batch, seq_k, embed_dim]
//   - value: [batch, seq_k, embed_dim]
//   - keyPadding: optional [batch*seq_k] flags; true marks a key to ignore
//
// Returns:
//   - output: [batch, seq_q, embed_dim]
//   - weights: [batch, seq_q, seq_k], averaged over heads
//
// A query whose keys are all padded attends to nothing and gets the output
// projection bias.
func (m *MultiHeadAttention) Forward(query, key, value *tensor.Tensor, keyPadding []bool) (*tensor.Tensor, *tensor.Tensor) {
	qs, ks, vs := query.Shape(), key.Shape(), value.Shape()
	if len(qs) != 3 || len(ks) != 3 || !ks.Equal(vs) || qs[0] != ks[0] ||
		qs[2] != m.EmbedDim || ks[2] != m.EmbedDim {
		panic(fmt.Sprintf("MultiHeadAttention.Forward: incompatible shapes q=%v k=%v v=%v (embed_dim %d)", qs, ks, vs, m.EmbedDim))
	}
	batch, seqQ, seqK := qs[0], qs[1], ks[1]
	if keyPadding != nil && len(keyPadding) != batch*seqK {
		panic(fmt.Sprintf("MultiHeadAttention.Forward: key padding has %d flags, want %d", len(keyPadding), batch*seqK))
	}

	e := m.EmbedDim
	w := m.InProjWeight.Tensor().Data()
	b := m.InProjBias.Tensor().Data()

	q := make([]float32, batch*seqQ*e)
	k := make([]float32, batch*seqK*e)
	v := make([]float32, batch*seqK*e)
	affine(query.Data(), batch*seqQ, e, w[:e*e], b[:e], e, q)
	affine(key.Data(), batch*seqK, e, w[e*e:2*e*e], b[e:2*e], e, k)
	affine(value.Data(), batch*seqK, e, w[2*e*e:], b[2*e:], e, v)

	heads := make([]float32, batch*seqQ*e)
	weights := tensor.New(tensor.Shape{batch, seqQ, seqK})
	avg := weights.Data()
	scores := make([]float32, seqK)
	scale := float32(1 / math.Sqrt(float64(m.HeadDim)))
	invHeads := 1 / float32(m.NumHeads)

	for bi := 0; bi < batch; bi++ {
		var pad []bool
		if keyPadding != nil {
			pad = keyPadding[bi*seqK : (bi+1)*seqK]
		}
		for h := 0; h < m.NumHeads; h++ {
			off := h * m.HeadDim
			for i := 0; i < seqQ; i++ {
				qi := q[(bi*seqQ+i)*e+off : (bi*seqQ+i)*e+off+m.HeadDim]
				for j := 0; j < seqK; j++ {
					if pad != nil && pad[j] {
						scores[j] = float32(math.Inf(-1))
						continue
					}
					kj := k[(bi*seqK+j)*e+off : (bi*seqK+j)*e+off+m.HeadDim]
					var dot float32
					for d, x := range qi {
						dot += x * kj[d]
					}
					scores[j] = dot * scale
				}
				softmax(scores)

				dst := heads[(bi*seqQ+i)*e+off : (bi*seqQ+i)*e+off+m.HeadDim]
				row := avg[(bi*seqQ+i)*seqK : (bi*seqQ+i+1)*seqK]
				for j, p := range scores {
					if p == 0 {
						continue
					}
					row[j] += p * invHeads
					vj := v[(bi*seqK+j)*e+off : (bi*seqK+j)*e+off+m.HeadDim]
					for d, x := range vj {
						dst[d] += p * x
					}
				}
			}
		}
	}

	concat, err := tensor.FromSlice(heads, tensor.Shape{batch, seqQ, e})
	if err != nil {
		panic(err)
	}
	return m.OutProj.Forward(concat), weights
}

// softmax normalizes scores in place. -Inf entries become zero; if every
// entry is -Inf the whole row is zero.
func softmax(scores []float32) {
	maxV := float32(math.Inf(-1))
	for _, s := range scores {
		if s > maxV {
			maxV = s
		}
	}
	if math.IsInf(float64(maxV), -1) {
		for i := range scores {
			scores[i] = 0
		}
		return
	}
	var sum float32
	for i, s := range scores {
		ex := float32(math.Exp(float64(s - maxV)))
		scores[i] = ex
		sum += ex
	}
	for i := range scores {
		scores[i] /= sum
	}
}

// Parameters returns the packed input projection and the output projection.
func (m *MultiHeadAttention) Parameters() []*Parameter {
	return append([]*Parameter{m.InProjWeight, m.InProjBias}, m.OutProj.Parameters()...)
}

// StateDict returns in_proj_weight, in_proj_bias, out_proj.weight and out_proj.bias.
func (m *MultiHeadAttention) StateDict() map[string]*tensor.Tensor {
	sd := paramStateDict(m.InProjWeight, m.InProjBias)
	PrefixStateDict(sd, "out_proj", m.OutProj.StateDict())
	return sd
}

// LoadStateDict loads all projections.
func (m *MultiHeadAttention) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	if err := loadParams(stateDict, m.InProjWeight, m.InProjBias); err != nil {
		return err
	}
	if err := m.OutProj.LoadStateDict(SubStateDict(stateDict, "out_proj")); err != nil {
		return fmt.Errorf("out_proj: %w", err)
	}
	return nil
}
