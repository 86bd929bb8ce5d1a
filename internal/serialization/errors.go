package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch     = errors.New("checksum mismatch: file may be corrupted")
	ErrOffsetOverlap        = errors.New("tensor offsets overlap")
	ErrOutOfBounds          = errors.New("tensor extends beyond data section")
	ErrNegativeOffset       = errors.New("negative offset or size")
	ErrTooManyTensors       = errors.New("too many tensors in file")
	ErrInvalidTensorName    = errors.New("invalid tensor name")
	ErrHeaderTooLarge       = errors.New("header exceeds maximum size")
	ErrInvalidMagic         = errors.New("invalid magic bytes")
	ErrUnsupportedVersion   = errors.New("unsupported format version")
	ErrTruncated            = errors.New("file truncated")
	ErrInvalidModel         = errors.New("invalid model")
	ErrArchitectureMismatch = errors.New("model architecture does not match")
	ErrInvalidModelID       = errors.New("invalid model id")
	ErrPersistence          = errors.New("model persistence failed")
)

// validationKinds maps ValidationError types to their sentinel errors.
var validationKinds = map[string]error{
	"offset_overlap":   ErrOffsetOverlap,
	"out_of_bounds":    ErrOutOfBounds,
	"negative_offset":  ErrNegativeOffset,
	"too_many_tensors": ErrTooManyTensors,
	"name_too_long":    ErrInvalidTensorName,
	"invalid_name":     ErrInvalidTensorName,
}

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Tensor  string // Primary tensor name involved
	Tensor2 string // Secondary tensor name (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Is matches ErrInvalidModel and the sentinel for e.Type.
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidModel {
		return true
	}
	sentinel, ok := validationKinds[e.Type]
	return ok && target == sentinel
}

// PersistenceError wraps a failure to save or load a model file.
type PersistenceError struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s model %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
