package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ByteSize returns the number of bytes Bytes will produce.
func (t *Tensor) ByteSize() int {
	return len(t.data) * Float32.Size()
}

// Bytes encodes the tensor data as little-endian IEEE-754 float32 values.
func (t *Tensor) Bytes() []byte {
	buf := make([]byte, t.ByteSize())
	for i, v := range t.data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// FromBytes decodes little-endian float32 data into a new tensor.
func FromBytes(shape Shape, data []byte) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	want := shape.NumElements() * Float32.Size()
	if len(data) != want {
		return nil, fmt.Errorf("shape %v requires %d bytes, but got %d", shape, want, len(data))
	}
	t := New(shape)
	for i := range t.data {
		t.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return t, nil
}
