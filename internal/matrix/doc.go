// Package matrix implements the dense two-dimensional float64 matrix used by
// the network and trainer.
//
// Matrices are value-like: every operation that is not explicitly named
// "InPlace" returns a freshly allocated result and leaves its operands
// untouched. Binary operations validate shapes before computing and return a
// *ShapeError (matching ErrShapeMismatch) instead of truncating or
// broadcasting. Scalar operations have their own entry points (Scale,
// AddScalar).
//
// Example:
//
//	w, _ := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
//	x := matrix.FromVector([]float64{1, 1})
//	y, err := w.Multiply(x) // (2x1): [3, 7]
package matrix
