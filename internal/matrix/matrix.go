package matrix

import (
	"fmt"
	"math"
)

// Matrix is a dense row-major matrix of float64 values.
//
// The zero value is not usable; construct matrices with New, FromSlice,
// FromRows or FromVector.
type Matrix struct {
	rows int
	cols int
	data []float64 // len == rows*cols, element (i, j) at i*cols+j
}

// New creates a zero-filled rows x cols matrix.
func New(rows, cols int) (*Matrix, error) {
	shape := Shape{Rows: rows, Cols: cols}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// FromSlice creates a rows x cols matrix from row-major data.
// The data is copied.
func FromSlice(rows, cols int, data []float64) (*Matrix, error) {
	shape := Shape{Rows: rows, Cols: cols}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrInvalidShape, len(data), shape)
	}
	m, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	copy(m.data, data)
	return m, nil
}

// FromRows creates a matrix from a slice of equally sized rows.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidShape)
	}
	m, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrInvalidShape, i, len(row), m.cols)
		}
		copy(m.data[i*m.cols:], row)
	}
	return m, nil
}

// FromVector lifts v into a len(v) x 1 column vector.
func FromVector(v []float64) (*Matrix, error) {
	return FromSlice(len(v), 1, v)
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns the matrix dimensions.
func (m *Matrix) Shape() Shape { return Shape{Rows: m.rows, Cols: m.cols} }

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	m.checkIndex(i, j)
	return m.data[i*m.cols+j]
}

// Set assigns element (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.checkIndex(i, j)
	m.data[i*m.cols+j] = v
}

func (m *Matrix) checkIndex(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range for shape %s", i, j, m.Shape()))
	}
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	m.checkIndex(i, 0)
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Data returns a row-major copy of the elements.
func (m *Matrix) Data() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// ToVector flattens the matrix into a new slice in row-major order.
// For a column vector this is the vector that FromVector was given.
func (m *Matrix) ToVector() []float64 {
	return m.Data()
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: m.Data()}
}

// Equal reports whether a and b have the same shape and every pair of
// elements differs by at most tol.
func Equal(a, b *Matrix, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i, v := range a.data {
		if math.Abs(v-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// String renders the matrix row by row.
func (m *Matrix) String() string {
	s := m.Shape().String() + "["
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			s += "; "
		}
		s += fmt.Sprint(m.data[i*m.cols : (i+1)*m.cols])
	}
	return s + "]"
}
