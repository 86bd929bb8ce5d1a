package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Scaler performs per-column min-max normalization into [0, 1].
// A column whose min equals its max maps to 0.5.
type Scaler struct {
	Min []float64
	Max []float64
}

// FitScaler computes column minima and maxima of rows.
// rows must be non-empty and uniform in width.
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	width := len(rows[0])
	s := &Scaler{Min: make([]float64, width), Max: make([]float64, width)}
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		s.Min[j] = floats.Min(col)
		s.Max[j] = floats.Max(col)
	}
	return s
}

// Width returns the number of columns the scaler was fitted on.
func (s *Scaler) Width() int { return len(s.Min) }

// Transform returns a normalized copy of v.
func (s *Scaler) Transform(v []float64) ([]float64, error) {
	if len(v) != len(s.Min) {
		return nil, &RecordError{Reason: fmt.Sprintf("vector width %d, scaler expects %d", len(v), len(s.Min))}
	}
	out := make([]float64, len(v))
	for j, x := range v {
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			out[j] = 0.5
			continue
		}
		out[j] = (x - s.Min[j]) / span
	}
	return out, nil
}

// Inverse maps a normalized vector back to the original range. A constant
// column maps back to its single value.
func (s *Scaler) Inverse(v []float64) ([]float64, error) {
	if len(v) != len(s.Min) {
		return nil, &RecordError{Reason: fmt.Sprintf("vector width %d, scaler expects %d", len(v), len(s.Min))}
	}
	out := make([]float64, len(v))
	for j, x := range v {
		out[j] = s.Min[j] + x*(s.Max[j]-s.Min[j])
	}
	return out, nil
}

func (s *Scaler) transformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		v, err := s.Transform(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
