package network

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/densenet/internal/matrix"
)

// Gradients accumulates parameter gradients for one or more examples.
//
// A Gradients value is owned by a single worker; it is not safe for
// concurrent use.
type Gradients struct {
	Weights []*matrix.Matrix
	Biases  []*matrix.Matrix
	Count   int // number of examples accumulated
}

// NewGradients returns zeroed gradients shaped like n's parameters.
func NewGradients(n *Network) *Gradients {
	g := &Gradients{
		Weights: make([]*matrix.Matrix, len(n.layers)),
		Biases:  make([]*matrix.Matrix, len(n.layers)),
	}
	for i, l := range n.layers {
		// Shapes come from existing matrices, so New cannot fail here.
		g.Weights[i], _ = matrix.New(l.Weights.Rows(), l.Weights.Cols())
		g.Biases[i], _ = matrix.New(l.Bias.Rows(), l.Bias.Cols())
	}
	return g
}

// Accumulate adds other into g.
func (g *Gradients) Accumulate(other *Gradients) error {
	if len(other.Weights) != len(g.Weights) {
		return fmt.Errorf("%w: %d gradient layers, expected %d", ErrInvalidArchitecture, len(other.Weights), len(g.Weights))
	}
	for i := range g.Weights {
		if err := g.Weights[i].AddInPlace(other.Weights[i]); err != nil {
			return fmt.Errorf("layer %d weights: %w", i, err)
		}
		if err := g.Biases[i].AddInPlace(other.Biases[i]); err != nil {
			return fmt.Errorf("layer %d bias: %w", i, err)
		}
	}
	g.Count += other.Count
	return nil
}

// Reset zeroes g for reuse.
func (g *Gradients) Reset() {
	for i := range g.Weights {
		g.Weights[i].Zero()
		g.Biases[i].Zero()
	}
	g.Count = 0
}

// Backprop computes the gradients of one example without touching n.
// It returns the example's mean squared error.
func (n *Network) Backprop(input, target []float64) (*Gradients, float64, error) {
	g := NewGradients(n)
	loss, err := n.AccumulateGradients(g, input, target)
	if err != nil {
		return nil, 0, err
	}
	return g, loss, nil
}

// AccumulateGradients backpropagates one example and adds its gradients to g.
//
// With e = a_last - target:
//
//	loss       = mean(e²)
//	delta_k    = e ⊙ g'_k
//	dW_i       = delta_i · a_{i-1}ᵀ
//	db_i       = delta_i
//	delta_{i-1} = (W_iᵀ · delta_i) ⊙ g'_{i-1}
//
// Each g' is evaluated on z or a as the layer's activation declares.
// n is only read.
func (n *Network) AccumulateGradients(g *Gradients, input, target []float64) (float64, error) {
	if len(target) != n.OutputSize() {
		return 0, &DimensionError{What: "target", Got: len(target), Want: n.OutputSize()}
	}
	if len(g.Weights) != len(n.layers) {
		return 0, fmt.Errorf("%w: %d gradient layers, expected %d", ErrInvalidArchitecture, len(g.Weights), len(n.layers))
	}
	tr, err := n.Forward(input)
	if err != nil {
		return 0, err
	}
	t, err := matrix.FromVector(target)
	if err != nil {
		return 0, err
	}

	k := len(n.layers)
	out := tr.A[k]
	residual, err := out.Subtract(t)
	if err != nil {
		return 0, err
	}
	e := residual.ToVector()
	loss := floats.Dot(e, e) / float64(len(e))

	delta, err := residual.Hadamard(n.layers[k-1].Activation.Gradient(tr.Z[k-1], out))
	if err != nil {
		return 0, err
	}
	for i := k - 1; i >= 0; i-- {
		dw, err := delta.Multiply(tr.A[i].Transpose())
		if err != nil {
			return 0, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := g.Weights[i].AddInPlace(dw); err != nil {
			return 0, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := g.Biases[i].AddInPlace(delta); err != nil {
			return 0, fmt.Errorf("layer %d: %w", i, err)
		}
		if i == 0 {
			break
		}
		back, err := n.layers[i].Weights.Transpose().Multiply(delta)
		if err != nil {
			return 0, fmt.Errorf("layer %d: %w", i, err)
		}
		prev := n.layers[i-1].Activation
		if delta, err = back.Hadamard(prev.Gradient(tr.Z[i-1], tr.A[i])); err != nil {
			return 0, fmt.Errorf("layer %d: %w", i-1, err)
		}
	}
	g.Count++
	return loss, nil
}

// Apply performs one gradient-descent update with the mean of g:
//
//	W_i ← W_i − lr · dW_i / g.Count
//	b_i ← b_i − lr · db_i / g.Count
//
// Apply writes n in place. An empty g is a no-op.
func (n *Network) Apply(g *Gradients, lr float64) error {
	if g.Count == 0 {
		return nil
	}
	if len(g.Weights) != len(n.layers) || len(g.Biases) != len(n.layers) {
		return fmt.Errorf("%w: %d gradient layers, expected %d", ErrInvalidArchitecture, len(g.Weights), len(n.layers))
	}
	step := -lr / float64(g.Count)
	for i, l := range n.layers {
		if err := l.Weights.AxpyInPlace(step, g.Weights[i]); err != nil {
			return fmt.Errorf("layer %d weights: %w", i, err)
		}
		if err := l.Bias.AxpyInPlace(step, g.Biases[i]); err != nil {
			return fmt.Errorf("layer %d bias: %w", i, err)
		}
	}
	return nil
}

// TrainStep trains on a single example: a forward pass, backpropagation and
// an in-place parameter update with learning rate lr.
//
// All gradients are computed before any layer is updated, so deltas are
// propagated through the weights as they were before this step. This differs
// from updating each layer and then propagating through its new weights, and
// makes TrainStep equal to Backprop followed by Apply, so the serialized and
// parallel training strategies descend the same gradient.
//
// Returns the example's mean squared error. On a dimension error n is left
// unchanged.
func (n *Network) TrainStep(input, target []float64, lr float64) (float64, error) {
	g, loss, err := n.Backprop(input, target)
	if err != nil {
		return 0, err
	}
	if err := n.Apply(g, lr); err != nil {
		return 0, err
	}
	return loss, nil
}
