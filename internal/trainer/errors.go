package trainer

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrBatchFailure  = errors.New("batch failed")
	ErrInvalidConfig = errors.New("invalid trainer config")
)

// BatchError reports a batch whose processing returned an error or panicked.
// Failed batches are logged and count as zero loss; they never abort an epoch.
type BatchError struct {
	Batch int
	Err   error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d: %v", e.Batch, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BatchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBatchFailure.
func (e *BatchError) Is(target error) bool {
	return target == ErrBatchFailure
}
