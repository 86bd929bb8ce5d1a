package matrix

// Multiply returns m · b. Requires m.Cols() == b.Rows().
//
// C[i,j] = sum_k A[i,k] * B[k,j], accumulated left to right in float64.
func (m *Matrix) Multiply(b *Matrix) (*Matrix, error) {
	if m.cols != b.rows {
		return nil, mismatch("multiply", m, b)
	}
	out := &Matrix{rows: m.rows, cols: b.cols, data: make([]float64, m.rows*b.cols)}
	inner := m.cols
	for i := 0; i < m.rows; i++ {
		for j := 0; j < b.cols; j++ {
			sum := 0.0
			for k := 0; k < inner; k++ {
				sum += m.data[i*inner+k] * b.data[k*b.cols+j]
			}
			out.data[i*b.cols+j] = sum
		}
	}
	return out, nil
}

// Add returns m + b elementwise.
func (m *Matrix) Add(b *Matrix) (*Matrix, error) {
	return m.zip("add", b, func(x, y float64) float64 { return x + y })
}

// Subtract returns m - b elementwise.
func (m *Matrix) Subtract(b *Matrix) (*Matrix, error) {
	return m.zip("subtract", b, func(x, y float64) float64 { return x - y })
}

// Hadamard returns the elementwise product m ⊙ b.
func (m *Matrix) Hadamard(b *Matrix) (*Matrix, error) {
	return m.zip("hadamard", b, func(x, y float64) float64 { return x * y })
}

func (m *Matrix) zip(op string, b *Matrix, f func(x, y float64) float64) (*Matrix, error) {
	if m.rows != b.rows || m.cols != b.cols {
		return nil, mismatch(op, m, b)
	}
	out := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	for i, v := range m.data {
		out.data[i] = f(v, b.data[i])
	}
	return out, nil
}

// Scale returns s * m.
func (m *Matrix) Scale(s float64) *Matrix {
	return m.Map(func(x float64) float64 { return x * s })
}

// AddScalar returns m + s applied to every element.
func (m *Matrix) AddScalar(s float64) *Matrix {
	return m.Map(func(x float64) float64 { return x + s })
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	out := &Matrix{rows: m.cols, cols: m.rows, data: make([]float64, len(m.data))}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// Map applies f to every element and returns the result.
func (m *Matrix) Map(f func(float64) float64) *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	for i, v := range m.data {
		out.data[i] = f(v)
	}
	return out
}

// In-place operations. These mutate the receiver.

// AddInPlace performs m += b.
func (m *Matrix) AddInPlace(b *Matrix) error {
	return m.AxpyInPlace(1, b)
}

// SubtractInPlace performs m -= b.
func (m *Matrix) SubtractInPlace(b *Matrix) error {
	return m.AxpyInPlace(-1, b)
}

// AxpyInPlace performs m += alpha * x.
func (m *Matrix) AxpyInPlace(alpha float64, x *Matrix) error {
	if m.rows != x.rows || m.cols != x.cols {
		return mismatch("axpy", m, x)
	}
	for i, v := range x.data {
		m.data[i] += alpha * v
	}
	return nil
}

// ScaleInPlace performs m *= s.
func (m *Matrix) ScaleInPlace(s float64) {
	for i := range m.data {
		m.data[i] *= s
	}
}

// Zero sets every element to 0.
func (m *Matrix) Zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}
