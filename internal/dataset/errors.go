package dataset

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrLengthMismatch   = errors.New("inputs and outputs differ in length")
	ErrMalformedRecord  = errors.New("malformed record")
	ErrEmptyDataset     = errors.New("no usable examples")
	ErrInvalidBatchSize = errors.New("batch size must be >= 1")
)

// RecordError describes a record that is not fully numeric or has the
// wrong width. Line is 1-based; 0 means the record did not come from a file.
type RecordError struct {
	Line   int
	Reason string
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, ErrMalformedRecord)
	}
	return fmt.Sprintf("%s: %v", e.Reason, ErrMalformedRecord)
}

// Is reports whether target is ErrMalformedRecord.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
