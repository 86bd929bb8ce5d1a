package matrix

import (
	"fmt"
	"math"
)

// Shape holds the dimensions of a matrix.
type Shape struct {
	Rows int
	Cols int
}

// NumElements returns Rows*Cols.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks that both dimensions are positive and that Rows*Cols
// does not overflow int.
func (s Shape) Validate() error {
	if s.Rows < 1 || s.Cols < 1 {
		return fmt.Errorf("%w: %s (dimensions must be > 0)", ErrInvalidShape, s)
	}
	if s.Rows > math.MaxInt/s.Cols {
		return fmt.Errorf("%w: %s (too many elements)", ErrInvalidShape, s)
	}
	return nil
}

// String formats the shape as (RxC).
func (s Shape) String() string {
	return fmt.Sprintf("(%dx%d)", s.Rows, s.Cols)
}
