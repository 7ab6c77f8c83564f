package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Embedding is a lookup table that maps discrete token ids to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] parameter, N(0, 1) initialized
//   - Forward: ids [batch][seq] -> embeddings [batch, seq, EmbedDim]
type Embedding struct {
	Weight   *Parameter
	NumEmbed int
	EmbedDim int
}

// NewEmbedding creates a new Embedding layer with weights drawn from N(0, 1).
func NewEmbedding(numEmbeddings, embeddingDim int, rng *rand.Rand) *Embedding {
	return &Embedding{
		Weight:   NewParameter("weight", Randn(tensor.Shape{numEmbeddings, embeddingDim}, rng)),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
	}
}

// Forward performs embedding lookup.
//
// All sequences in the batch must have the same non-zero length. Returns an
// error if any id falls outside [0, NumEmbed).
func (e *Embedding) Forward(ids [][]int32) (*tensor.Tensor, error) {
	batch, seq, err := batchDims(ids)
	if err != nil {
		return nil, err
	}

	out := tensor.New(tensor.Shape{batch, seq, e.EmbedDim})
	weight := e.Weight.Tensor().Data()
	dst := out.Data()
	for b, row := range ids {
		for t, id := range row {
			if id < 0 || int(id) >= e.NumEmbed {
				return nil, fmt.Errorf("token id %d at [%d,%d] out of range [0, %d)", id, b, t, e.NumEmbed)
			}
			off := (b*seq + t) * e.EmbedDim
			copy(dst[off:off+e.EmbedDim], weight[int(id)*e.EmbedDim:(int(id)+1)*e.EmbedDim])
		}
	}
	return out, nil
}

// batchDims validates a rectangular batch of token ids.
func batchDims(ids [][]int32) (batch, seq int, err error) {
	if len(ids) == 0 {
		return 0, 0, fmt.Errorf("empty batch")
	}
	seq = len(ids[0])
	if seq == 0 {
		return 0, 0, fmt.Errorf("empty sequence")
	}
	for i, row := range ids {
		if len(row) != seq {
			return 0, 0, fmt.Errorf("sequence %d has length %d, want %d", i, len(row), seq)
		}
	}
	return len(ids), seq, nil
}

// Parameters returns the list of trainable parameters.
func (e *Embedding) Parameters() []*Parameter {
	return []*Parameter{e.Weight}
}

// StateDict returns {"weight"}.
func (e *Embedding) StateDict() map[string]*tensor.Tensor {
	return paramStateDict(e.Weight)
}

// LoadStateDict loads the embedding table.
func (e *Embedding) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	return loadParams(stateDict, e.Weight)
}
