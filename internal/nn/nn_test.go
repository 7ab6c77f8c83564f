package nn

import (
	"math"
	"testing"

	"github.com/aletheia-ml/aletheia/internal/parallel"
	"github.com/aletheia-ml/aletheia/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestLinear_Forward(t *testing.T) {
	l := NewLinear(3, 2, tensor.NewRand(1))
	copy(l.Weight().Tensor().Data(), []float32{1, 0, -1, 2, 2, 2})
	copy(l.Bias().Tensor().Data(), []float32{0.5, -1})

	x := mustTensor(t, []float32{1, 2, 3, 0, 1, 0}, tensor.Shape{2, 3})
	y := l.Forward(x)

	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.Equal(t, []float32{-1.5, 11, 0.5, 1}, y.Data())
}

func TestLinear_Forward3D(t *testing.T) {
	l := NewLinear(4, 6, tensor.NewRand(2))
	y := l.Forward(tensor.New(tensor.Shape{2, 5, 4}))
	assert.Equal(t, tensor.Shape{2, 5, 6}, y.Shape())

	assert.Panics(t, func() { l.Forward(tensor.New(tensor.Shape{2, 3})) })
}

func TestLinear_XavierBounds(t *testing.T) {
	l := NewLinear(64, 32, tensor.NewRand(3))
	bound := float32(math.Sqrt(6.0 / 96.0))
	for _, v := range l.Weight().Tensor().Data() {
		require.LessOrEqual(t, v, bound)
		require.GreaterOrEqual(t, v, -bound)
	}
	for _, v := range l.Bias().Tensor().Data() {
		require.Zero(t, v)
	}
}

func TestLinear_StateDictRoundTrip(t *testing.T) {
	src := NewLinear(5, 3, tensor.NewRand(4))
	dst := NewLinear(5, 3, tensor.NewRand(5))

	sd := src.StateDict()
	assert.ElementsMatch(t, []string{"weight", "bias"}, SortedKeys(sd))
	require.NoError(t, dst.LoadStateDict(sd))
	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())

	wrong := NewLinear(5, 4, tensor.NewRand(6))
	assert.ErrorContains(t, wrong.LoadStateDict(sd), "shape mismatch")
	assert.ErrorContains(t, dst.LoadStateDict(map[string]*tensor.Tensor{}), "missing weight")
}

func TestParallelMatchesSequential(t *testing.T) {
	rng := tensor.NewRand(3)
	l := NewLinear(64, 48, rng)
	ln := NewLayerNorm(64, 1e-5)
	copy(ln.Weight.Tensor().Data(), Randn(tensor.Shape{64}, rng).Data())
	x := Randn(tensor.Shape{600, 64}, rng)

	saved := parallelism
	defer func() { parallelism = saved }()

	parallelism = parallel.Config{Enabled: false}
	wantLinear, wantNorm := l.Forward(x), ln.Forward(x)
	parallelism = parallel.Config{Enabled: true, NumWorkers: 7}
	gotLinear, gotNorm := l.Forward(x), ln.Forward(x)

	assert.Equal(t, wantLinear.Data(), gotLinear.Data())
	assert.Equal(t, wantNorm.Data(), gotNorm.Data())
}

func TestEmbedding_Forward(t *testing.T) {
	e := NewEmbedding(10, 4, tensor.NewRand(7))
	out, err := e.Forward([][]int32{{1, 2}, {9, 1}})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 4}, out.Shape())

	w := e.Weight.Tensor()
	assert.Equal(t, w.Row(1), out.Row(0))
	assert.Equal(t, w.Row(9), out.Row(2))
	assert.Equal(t, w.Row(1), out.Row(3))
}

func TestEmbedding_Errors(t *testing.T) {
	e := NewEmbedding(10, 4, tensor.NewRand(8))

	tests := []struct {
		name string
		ids  [][]int32
		want string
	}{
		{"empty batch", nil, "empty batch"},
		{"empty sequence", [][]int32{{}}, "empty sequence"},
		{"ragged", [][]int32{{1, 2}, {3}}, "length 1"},
		{"negative id", [][]int32{{-1}}, "out of range"},
		{"id too large", [][]int32{{10}}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Forward(tt.ids)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLayerNorm_Normalizes(t *testing.T) {
	ln := NewLayerNorm(4, 1e-5)
	x := mustTensor(t, []float32{1, 2, 3, 4, 10, 10, 10, 10}, tensor.Shape{2, 4})
	y := ln.Forward(x)

	row := y.Row(0)
	var mean, variance float64
	for _, v := range row {
		mean += float64(v)
	}
	mean /= 4
	for _, v := range row {
		variance += (float64(v) - mean) * (float64(v) - mean)
	}
	variance /= 4
	assert.InDelta(t, 0, mean, 1e-5)
	assert.InDelta(t, 1, variance, 1e-3)

	for _, v := range y.Row(1) {
		assert.InDelta(t, 0, v, 1e-6)
	}

	assert.ElementsMatch(t, []string{"weight", "bias"}, SortedKeys(ln.StateDict()))
}

func TestMultiHeadAttention_Shapes(t *testing.T) {
	mha := NewMultiHeadAttention(8, 2, tensor.NewRand(9))
	assert.Equal(t, 4, mha.HeadDim)

	x := tensor.Randn(tensor.Shape{2, 3, 8}, tensor.NewRand(10))
	out, weights := mha.Forward(x, x, x, nil)

	assert.Equal(t, tensor.Shape{2, 3, 8}, out.Shape())
	assert.Equal(t, tensor.Shape{2, 3, 3}, weights.Shape())

	for r := 0; r < weights.Shape().Rows(); r++ {
		var sum float32
		for _, w := range weights.Row(r) {
			sum += w
		}
		assert.InDelta(t, 1, sum, 1e-5)
	}
}

func TestMultiHeadAttention_KeyPadding(t *testing.T) {
	mha := NewMultiHeadAttention(4, 2, tensor.NewRand(11))
	x := tensor.Randn(tensor.Shape{1, 3, 4}, tensor.NewRand(12))

	_, weights := mha.Forward(x, x, x, []bool{false, false, true})
	for r := 0; r < 3; r++ {
		row := weights.Row(r)
		assert.Zero(t, row[2])
		assert.InDelta(t, 1, row[0]+row[1], 1e-5)
	}

	out, weights := mha.Forward(x, x, x, []bool{true, true, true})
	for _, w := range weights.Data() {
		assert.Zero(t, w)
	}
	for _, v := range out.Data() {
		assert.Zero(t, v) // out_proj bias starts at zero
	}
}

func TestMultiHeadAttention_Uniform(t *testing.T) {
	// With zero query/key projections every score is equal, so attention
	// is a plain average of the projected values.
	mha := NewMultiHeadAttention(2, 1, tensor.NewRand(13))
	w := mha.InProjWeight.Tensor().Data()
	for i := range w {
		w[i] = 0
	}
	// value projection = identity
	w[8], w[11] = 1, 1
	ow := mha.OutProj.Weight().Tensor().Data()
	copy(ow, []float32{1, 0, 0, 1})

	x := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 2, 2})
	out, _ := mha.Forward(x, x, x, nil)
	assert.InDeltaSlice(t, []float32{2, 3, 2, 3}, out.Data(), 1e-6)
}

func TestMultiHeadAttention_StateDict(t *testing.T) {
	mha := NewMultiHeadAttention(8, 4, tensor.NewRand(14))
	sd := mha.StateDict()
	assert.Equal(t, []string{"in_proj_bias", "in_proj_weight", "out_proj.bias", "out_proj.weight"}, SortedKeys(sd))
	assert.Equal(t, tensor.Shape{24, 8}, sd["in_proj_weight"].Shape())

	other := NewMultiHeadAttention(8, 4, tensor.NewRand(15))
	require.NoError(t, other.LoadStateDict(sd))
	assert.Equal(t, mha.OutProj.Weight().Tensor().Data(), other.OutProj.Weight().Tensor().Data())
}

func TestMultiHeadAttention_Panics(t *testing.T) {
	assert.Panics(t, func() { NewMultiHeadAttention(10, 3, tensor.NewRand(1)) })

	mha := NewMultiHeadAttention(4, 2, tensor.NewRand(1))
	assert.Panics(t, func() {
		x := tensor.New(tensor.Shape{1, 2, 6})
		mha.Forward(x, x, x, nil)
	})
}

func TestLSTM_StateDictNames(t *testing.T) {
	l := NewLSTM(6, 4, 2, true, 0.1, tensor.NewRand(16))
	sd := l.StateDict()
	require.Len(t, sd, 16)

	assert.Equal(t, tensor.Shape{16, 6}, sd["weight_ih_l0"].Shape())
	assert.Equal(t, tensor.Shape{16, 6}, sd["weight_ih_l0_reverse"].Shape())
	assert.Equal(t, tensor.Shape{16, 8}, sd["weight_ih_l1"].Shape())
	assert.Equal(t, tensor.Shape{16, 4}, sd["weight_hh_l1_reverse"].Shape())
	assert.Equal(t, tensor.Shape{16}, sd["bias_hh_l1"].Shape())
	assert.Equal(t, 8, l.OutputSize())

	bound := float32(0.5) // 1/sqrt(4)
	for _, p := range l.Parameters() {
		for _, v := range p.Tensor().Data() {
			require.LessOrEqual(t, v, bound)
			require.GreaterOrEqual(t, v, -bound)
		}
	}
}

func TestLSTM_Forward(t *testing.T) {
	l := NewLSTM(3, 4, 2, true, 0, tensor.NewRand(17))
	x := tensor.Randn(tensor.Shape{2, 5, 3}, tensor.NewRand(18))

	out, state := l.Forward(x)
	assert.Equal(t, tensor.Shape{2, 5, 8}, out.Shape())
	assert.Equal(t, tensor.Shape{4, 2, 4}, state.H.Shape())
	assert.Equal(t, tensor.Shape{4, 2, 4}, state.C.Shape())

	// Top layer forward direction ends at the last step,
	// the reverse direction ends at the first.
	b := 1
	last := out.Row(b*5 + 4)
	first := out.Row(b*5 + 0)
	hFwd := state.H.Data()[(2*2+b)*4 : (2*2+b)*4+4]
	hRev := state.H.Data()[(3*2+b)*4 : (3*2+b)*4+4]
	assert.Equal(t, hFwd, last[:4])
	assert.Equal(t, hRev, first[4:])

	for _, v := range out.Data() {
		require.Less(t, math.Abs(float64(v)), 1.0)
	}
}

func TestLSTM_ZeroWeights(t *testing.T) {
	l := NewLSTM(2, 3, 1, false, 0, tensor.NewRand(19))
	for _, p := range l.Parameters() {
		d := p.Tensor().Data()
		for i := range d {
			d[i] = 0
		}
	}
	out, state := l.Forward(tensor.Ones(tensor.Shape{1, 4, 2}))
	for _, v := range out.Data() {
		assert.Zero(t, v)
	}
	for _, v := range state.C.Data() {
		assert.Zero(t, v)
	}
}

func TestLSTM_LoadStateDict(t *testing.T) {
	a := NewLSTM(3, 2, 1, true, 0, tensor.NewRand(20))
	b := NewLSTM(3, 2, 1, true, 0, tensor.NewRand(21))
	require.NoError(t, b.LoadStateDict(a.StateDict()))

	x := tensor.Randn(tensor.Shape{1, 3, 3}, tensor.NewRand(22))
	outA, _ := a.Forward(x)
	outB, _ := b.Forward(x)
	assert.Equal(t, outA.Data(), outB.Data())

	uni := NewLSTM(3, 2, 1, false, 0, tensor.NewRand(23))
	assert.NoError(t, uni.LoadStateDict(a.StateDict()), "extra keys are ignored")
	assert.Error(t, a.LoadStateDict(uni.StateDict()), "reverse weights missing")
}

func TestDropout(t *testing.T) {
	d := NewDropout(0.5, tensor.NewRand(24))
	x := tensor.Ones(tensor.Shape{1000})

	assert.Same(t, x, d.Forward(x), "eval mode is the identity")

	d.SetTraining(true)
	y := d.Forward(x)
	zeros := 0
	for _, v := range y.Data() {
		if v == 0 {
			zeros++
		} else {
			assert.Equal(t, float32(2), v)
		}
	}
	assert.InDelta(t, 500, zeros, 100)
	assert.Equal(t, float32(1), x.Data()[0], "input untouched")

	assert.Panics(t, func() { NewDropout(1, tensor.NewRand(1)) })
}

func TestSequential_StateDict(t *testing.T) {
	rng := tensor.NewRand(25)
	seq := NewSequential(
		NewLinear(4, 8, rng),
		NewReLU(),
		NewDropout(0.1, rng),
		NewLinear(8, 4, rng),
	)
	assert.Equal(t, 4, seq.Len())
	assert.Equal(t, []string{"0.bias", "0.weight", "3.bias", "3.weight"}, SortedKeys(seq.StateDict()))
	assert.Len(t, seq.Parameters(), 4)
	assert.Equal(t, 4*8+8+8*4+4, CountParameters(seq.StateDict()))

	other := NewSequential(
		NewLinear(4, 8, rng),
		NewReLU(),
		NewDropout(0.1, rng),
		NewLinear(8, 4, rng),
	)
	require.NoError(t, other.LoadStateDict(seq.StateDict()))

	x := tensor.Randn(tensor.Shape{2, 4}, rng)
	assert.Equal(t, seq.Forward(x).Data(), other.Forward(x).Data())

	seq.SetTraining(true)
	assert.True(t, seq.Layer(2).(*Dropout).Training())
	assert.Panics(t, func() { seq.Layer(4) })
}

func TestReLU(t *testing.T) {
	x := mustTensor(t, []float32{-2, 0, 3}, tensor.Shape{3})
	assert.Equal(t, []float32{0, 0, 3}, NewReLU().Forward(x).Data())
	assert.Empty(t, NewReLU().StateDict())
}

func TestSigmoidTanh(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-7)
	assert.InDelta(t, 0.7310586, Sigmoid(1), 1e-6)
	assert.InDelta(t, 0.7615942, Tanh(1), 1e-6)
}

func TestPrefixAndSubStateDict(t *testing.T) {
	inner := map[string]*tensor.Tensor{"weight": tensor.New(tensor.Shape{1})}
	outer := map[string]*tensor.Tensor{}
	PrefixStateDict(outer, "norm1", inner)
	PrefixStateDict(outer, "norm10", inner)

	assert.Equal(t, []string{"norm1.weight", "norm10.weight"}, SortedKeys(outer))
	sub := SubStateDict(outer, "norm1")
	assert.Len(t, sub, 1)
	assert.Contains(t, sub, "weight")
}
