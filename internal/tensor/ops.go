package tensor

import "fmt"

// Add returns a + b for tensors of identical shape.
func Add(a, b *Tensor) *Tensor {
	out := a.Clone()
	out.AddInPlace(b)
	return out
}

// AddInPlace adds other into t. Shapes must match exactly.
func (t *Tensor) AddInPlace(other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("Add: shape mismatch %v vs %v", t.shape, other.shape))
	}
	for i, v := range other.data {
		t.data[i] += v
	}
}

// Apply returns a new tensor with fn applied to every element.
func (t *Tensor) Apply(fn func(float32) float32) *Tensor {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = fn(v)
	}
	return out
}

// Scale multiplies every element by s in place and returns t.
func (t *Tensor) Scale(s float32) *Tensor {
	for i := range t.data {
		t.data[i] *= s
	}
	return t
}

// MeanSeq averages a [batch, seq, dim] tensor over the sequence axis.
//
// When mask is non-nil it must hold batch*seq weights (typically 0 or 1) and
// the average becomes sum(x*mask)/sum(mask) per batch row.
func MeanSeq(x *Tensor, mask []float32) (*Tensor, error) {
	s := x.shape
	if len(s) != 3 {
		return nil, fmt.Errorf("MeanSeq: expected [batch, seq, dim], got %v", s)
	}
	batch, seq, dim := s[0], s[1], s[2]
	if mask != nil && len(mask) != batch*seq {
		return nil, fmt.Errorf("MeanSeq: mask has %d values, want %d", len(mask), batch*seq)
	}

	out := New(Shape{batch, dim})
	for b := 0; b < batch; b++ {
		dst := out.data[b*dim : (b+1)*dim]
		var total float32
		for t := 0; t < seq; t++ {
			w := float32(1)
			if mask != nil {
				w = mask[b*seq+t]
			}
			if w == 0 {
				continue
			}
			total += w
			src := x.data[(b*seq+t)*dim : (b*seq+t+1)*dim]
			for i, v := range src {
				dst[i] += v * w
			}
		}
		if total == 0 {
			return nil, fmt.Errorf("MeanSeq: batch row %d has an all-zero mask", b)
		}
		for i := range dst {
			dst[i] /= total
		}
	}
	return out, nil
}
