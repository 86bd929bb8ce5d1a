package matrix

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrShapeMismatch = errors.New("matrix shape mismatch")
	ErrInvalidShape  = errors.New("invalid matrix shape")
)

// ShapeError reports the operand shapes of a failed binary operation.
type ShapeError struct {
	Op    string // Operation name (e.g., "multiply", "hadamard")
	Left  Shape
	Right Shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s vs %s: %v", e.Op, e.Left, e.Right, ErrShapeMismatch)
}

// Is reports whether target is ErrShapeMismatch.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShapeMismatch
}

func mismatch(op string, a, b *Matrix) error {
	return &ShapeError{Op: op, Left: a.Shape(), Right: b.Shape()}
}
