package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB - maximum JSON header size
	MaxTensorCount   = 10_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 256              // Maximum tensor name length
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	// Sort tensors by offset for efficient overlap detection.
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects over-long names, path separators, ".." and NUL.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "empty or contains '..', a path separator or a null byte",
		}
	}
	return nil
}

// ValidateHeader checks the tensor table against the data section and the
// tensor shapes against the declared architecture.
func ValidateHeader(h *Header, dataSize int64) error {
	if h.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: header declares %d, expected %d", ErrUnsupportedVersion, h.FormatVersion, FormatVersion)
	}
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}
	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_tensor", Tensor: t.Name, Details: "listed twice"}
		}
		seen[t.Name] = true
		if t.DType != DTypeFloat64 {
			return &ValidationError{Type: "invalid_dtype", Tensor: t.Name, Details: fmt.Sprintf("dtype %q, expected %q", t.DType, DTypeFloat64)}
		}
		for _, d := range t.Shape {
			if d < 1 {
				return &ValidationError{Type: "invalid_shape", Tensor: t.Name, Details: fmt.Sprintf("shape %v", t.Shape)}
			}
		}
		n, ok := numElements(t.Shape, dataSize/8)
		if !ok {
			return &ValidationError{Type: "out_of_bounds", Tensor: t.Name, Details: fmt.Sprintf("shape %v does not fit in %d data bytes", t.Shape, dataSize)}
		}
		if want := n * 8; t.Size != want {
			return &ValidationError{Type: "invalid_size", Tensor: t.Name, Details: fmt.Sprintf("size %d, shape %v needs %d", t.Size, t.Shape, want)}
		}
	}
	return ValidateTensorOffsets(h.Tensors, dataSize)
}

// expectedShapes returns the tensor shapes a network with arch must store,
// keyed by name.
func expectedShapes(arch []int) map[string][]int {
	shapes := make(map[string][]int, 2*(len(arch)-1))
	for i := 0; i+1 < len(arch); i++ {
		shapes[weightName(i)] = []int{arch[i+1], arch[i]}
		shapes[biasName(i)] = []int{arch[i+1], 1}
	}
	return shapes
}

func weightName(i int) string { return fmt.Sprintf("layers.%d.weight", i) }
func biasName(i int) string   { return fmt.Sprintf("layers.%d.bias", i) }
