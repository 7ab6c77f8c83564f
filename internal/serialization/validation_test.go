package serialization

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// TestValidateTensorOffsets covers overlap, bounds and negative values.
func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		want     error
	}{
		{
			name: "adjacent regions",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 100, Size: 100},
			},
			dataSize: 200,
		},
		{
			name: "overlap by one byte",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			dataSize: 200,
			want:     ErrOffsetOverlap,
		},
		{
			name: "overlap out of order",
			tensors: []TensorMeta{
				{Name: "b", Offset: 50, Size: 100},
				{Name: "a", Offset: 0, Size: 100},
			},
			dataSize: 200,
			want:     ErrOffsetOverlap,
		},
		{
			name:     "beyond data section",
			tensors:  []TensorMeta{{Name: "a", Offset: 150, Size: 100}},
			dataSize: 200,
			want:     ErrOutOfBounds,
		},
		{
			name:     "offset plus size overflows",
			tensors:  []TensorMeta{{Name: "a", Offset: math.MaxInt64 - 3, Size: 8}},
			dataSize: 200,
			want:     ErrOutOfBounds,
		},
		{
			name:     "size larger than data section",
			tensors:  []TensorMeta{{Name: "a", Offset: 0, Size: math.MaxInt64}},
			dataSize: 200,
			want:     ErrOutOfBounds,
		},
		{
			name:     "negative offset",
			tensors:  []TensorMeta{{Name: "a", Offset: -1, Size: 10}},
			dataSize: 200,
			want:     ErrNegativeOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestValidateTensorName covers accepted and rejected names.
func TestValidateTensorName(t *testing.T) {
	valid := []string{
		"embedding.weight",
		"ff1.0.weight",
		"encoder.weight_ih_l0_reverse",
		"pos_encoding",
	}
	for _, name := range valid {
		if err := ValidateTensorName(name); err != nil {
			t.Errorf("ValidateTensorName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"../weights",
		"a/b",
		`a\b`,
		"a\x00b",
		strings.Repeat("x", MaxTensorNameLen+1),
	}
	for _, name := range invalid {
		if err := ValidateTensorName(name); !errors.Is(err, ErrInvalidTensorName) {
			t.Errorf("ValidateTensorName(%q) = %v, want ErrInvalidTensorName", name, err)
		}
	}
}

// TestValidateHeader covers the validation levels.
func TestValidateHeader(t *testing.T) {
	sizeMismatch := Header{Tensors: []TensorMeta{
		{Name: "w", DType: "float32", Shape: []int{2, 2}, Offset: 0, Size: 12},
	}}
	if err := ValidateHeader(&sizeMismatch, 16, ValidationStrict); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("strict size mismatch = %v, want ErrOutOfBounds", err)
	}
	if err := ValidateHeader(&sizeMismatch, 16, ValidationNormal); err != nil {
		t.Errorf("normal size mismatch = %v, want nil", err)
	}

	badDType := Header{Tensors: []TensorMeta{
		{Name: "w", DType: "float64", Shape: []int{2}, Offset: 0, Size: 16},
	}}
	if err := ValidateHeader(&badDType, 16, ValidationStrict); !errors.Is(err, ErrUnsupportedDType) {
		t.Errorf("float64 dtype = %v, want ErrUnsupportedDType", err)
	}

	duplicate := Header{Tensors: []TensorMeta{
		{Name: "w", DType: "float32", Shape: []int{1}, Offset: 0, Size: 4},
		{Name: "w", DType: "float32", Shape: []int{1}, Offset: 4, Size: 4},
	}}
	if err := ValidateHeader(&duplicate, 8, ValidationNormal); !errors.Is(err, ErrInvalidTensorName) {
		t.Errorf("duplicate names = %v, want ErrInvalidTensorName", err)
	}

	bad := Header{Tensors: []TensorMeta{{Name: "../x", Offset: -5, Size: 1}}}
	if err := ValidateHeader(&bad, 0, ValidationNone); err != nil {
		t.Errorf("ValidationNone = %v, want nil", err)
	}
}

// TestValidationErrorMessage verifies the error text names the tensors involved.
func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Kind: ErrOffsetOverlap, Tensor: "a", Tensor2: "b", Details: "regions overlap"}
	msg := err.Error()
	for _, want := range []string{"overlap", `"a"`, `"b"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
	if !errors.Is(err, ErrOffsetOverlap) {
		t.Error("errors.Is(ValidationError, Kind) = false")
	}
}
