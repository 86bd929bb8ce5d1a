package serialization

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantErr  error
	}{
		{
			name: "contiguous",
			tensors: []TensorMeta{
				{Name: "layers.0.weight", Offset: 0, Size: 48},
				{Name: "layers.0.bias", Offset: 48, Size: 16},
			},
			dataSize: 64,
		},
		{
			name: "unsorted but disjoint",
			tensors: []TensorMeta{
				{Name: "b", Offset: 64, Size: 8},
				{Name: "a", Offset: 0, Size: 64},
			},
			dataSize: 72,
		},
		{
			name: "overlap by one byte",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantErr:  ErrOffsetOverlap,
		},
		{
			name:     "past the data section",
			tensors:  []TensorMeta{{Name: "a", Offset: 8, Size: 64}},
			dataSize: 64,
			wantErr:  ErrOutOfBounds,
		},
		{
			name:     "negative offset",
			tensors:  []TensorMeta{{Name: "a", Offset: -8, Size: 8}},
			dataSize: 64,
			wantErr:  ErrNegativeOffset,
		},
		{
			name:     "negative size",
			tensors:  []TensorMeta{{Name: "a", Offset: 0, Size: -1}},
			dataSize: 64,
			wantErr:  ErrNegativeOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got: %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidModel) {
				t.Errorf("ValidationError should match ErrInvalidModel")
			}
		})
	}
}

func TestValidateTensorOffsets_TooManyTensors(t *testing.T) {
	tensors := make([]TensorMeta, MaxTensorCount+1)
	for i := range tensors {
		tensors[i] = TensorMeta{Name: "t", Offset: int64(i) * 8, Size: 8}
	}
	err := ValidateTensorOffsets(tensors, int64(len(tensors))*8)
	if !errors.Is(err, ErrTooManyTensors) {
		t.Fatalf("Expected ErrTooManyTensors, got: %v", err)
	}
}

func TestValidateTensorName(t *testing.T) {
	for _, name := range []string{"layers.0.weight", "scaler.min", "output_scaler.max"} {
		if err := ValidateTensorName(name); err != nil {
			t.Errorf("ValidateTensorName(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", "../etc/passwd", "a/b", `a\b`, "a\x00b", strings.Repeat("x", MaxTensorNameLen+1)} {
		if err := ValidateTensorName(name); !errors.Is(err, ErrInvalidTensorName) {
			t.Errorf("ValidateTensorName(%q) = %v, want ErrInvalidTensorName", name, err)
		}
	}
}

func TestValidateHeader(t *testing.T) {
	valid := func() Header {
		return Header{
			FormatVersion: FormatVersion,
			Tensors: []TensorMeta{
				{Name: "layers.0.weight", DType: DTypeFloat64, Shape: []int{1, 2}, Offset: 0, Size: 16},
				{Name: "layers.0.bias", DType: DTypeFloat64, Shape: []int{1, 1}, Offset: 16, Size: 8},
			},
		}
	}
	if h := valid(); ValidateHeader(&h, 24) != nil {
		t.Fatalf("valid header rejected: %v", ValidateHeader(&h, 24))
	}

	tests := []struct {
		name   string
		mutate func(*Header)
		want   string
	}{
		{"version", func(h *Header) { h.FormatVersion = 9 }, "unsupported format version"},
		{"dtype", func(h *Header) { h.Tensors[0].DType = "float32" }, "invalid_dtype"},
		{"size", func(h *Header) { h.Tensors[0].Size = 8 }, "invalid_size"},
		{"shape", func(h *Header) { h.Tensors[0].Shape = []int{0, 2} }, "invalid_shape"},
		{"duplicate", func(h *Header) { h.Tensors[1].Name = "layers.0.weight" }, "duplicate_tensor"},
		{"name", func(h *Header) { h.Tensors[1].Name = "../bias" }, "invalid_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid()
			tt.mutate(&h)
			err := ValidateHeader(&h, 24)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidationError_ErrorMessages(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Type: "offset_overlap", Tensor: "a", Tensor2: "b", Details: "x"}, `offset_overlap: tensors "a" and "b": x`},
		{&ValidationError{Type: "out_of_bounds", Tensor: "a", Details: "x"}, `out_of_bounds: tensor "a": x`},
		{&ValidationError{Type: "too_many_tensors", Details: "x"}, "too_many_tensors: x"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func FuzzValidateTensorOffsets(f *testing.F) {
	f.Add(int64(0), int64(8), int64(8), int64(8), int64(16))
	f.Add(int64(-1), int64(8), int64(4), int64(8), int64(16))
	f.Fuzz(func(t *testing.T, off1, size1, off2, size2, dataSize int64) {
		tensors := []TensorMeta{{Name: "a", Offset: off1, Size: size1}, {Name: "b", Offset: off2, Size: size2}}
		_ = ValidateTensorOffsets(tensors, dataSize)
	})
}
