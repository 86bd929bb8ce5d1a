package network

import (
	"fmt"

	"github.com/born-ml/densenet/internal/matrix"
)

// Trace holds the intermediate values of one forward pass.
//
// A[0] is the input; for layer i, Z[i] is its pre-activation and A[i+1] its
// activated output. A Trace belongs to the caller that produced it, so
// concurrent forward passes never share one.
type Trace struct {
	Z []*matrix.Matrix
	A []*matrix.Matrix
}

// Output returns the final activation as a flat vector.
func (t *Trace) Output() []float64 {
	return t.A[len(t.A)-1].ToVector()
}

// Forward runs the forward pass and keeps every z and a in the returned Trace.
func (n *Network) Forward(input []float64) (*Trace, error) {
	if len(input) != n.InputSize() {
		return nil, &DimensionError{What: "input", Got: len(input), Want: n.InputSize()}
	}
	a, err := matrix.FromVector(input)
	if err != nil {
		return nil, err
	}

	tr := &Trace{
		Z: make([]*matrix.Matrix, 0, len(n.layers)),
		A: make([]*matrix.Matrix, 0, len(n.layers)+1),
	}
	tr.A = append(tr.A, a)
	for i, l := range n.layers {
		z, err := l.Weights.Multiply(a)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := z.AddInPlace(l.Bias); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		a = l.Activation.Apply(z)
		tr.Z = append(tr.Z, z)
		tr.A = append(tr.A, a)
	}
	return tr, nil
}

// Predict runs the forward pass and returns the output vector.
//
// Predict never writes to the network and is safe to call from many
// goroutines as long as no Apply or TrainStep runs on the same network.
func (n *Network) Predict(input []float64) ([]float64, error) {
	tr, err := n.Forward(input)
	if err != nil {
		return nil, err
	}
	return tr.Output(), nil
}
