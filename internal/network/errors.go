package network

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrInvalidArchitecture = errors.New("invalid architecture")
)

// DimensionError reports a vector whose width disagrees with the architecture.
type DimensionError struct {
	What string // "input", "target" or a parameter name
	Got  int
	Want int
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s width %d, expected %d: %v", e.What, e.Got, e.Want, ErrDimensionMismatch)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
