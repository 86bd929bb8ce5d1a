// Package network implements a fully connected feed-forward network trained
// with per-example backpropagation.
//
// A Network is a homogeneous stack of dense affine layers. Layer i maps a
// column vector of width arch[i] to width arch[i+1]:
//
//	z_i = W_i · a_{i-1} + b_i
//	a_i = g_i(z_i)
//
// where g_i is the hidden activation (ReLU by default) for every layer but
// the last, and the output activation (Sigmoid by default) for the last.
//
// Concurrency: Network does no locking. Predict, Forward and Backprop only
// read parameters and may run concurrently with each other. Apply and
// TrainStep write parameters in place and must not overlap with any other
// call on the same Network. The trainer package coordinates this.
package network

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/densenet/internal/activation"
	"github.com/born-ml/densenet/internal/matrix"
)

// DefaultLearningRate is used when no learning rate is configured.
const DefaultLearningRate = 0.01

// Layer holds one dense layer's parameters.
type Layer struct {
	Weights    *matrix.Matrix // (out, in)
	Bias       *matrix.Matrix // (out, 1)
	Activation activation.Kind
}

// Network is a dense feed-forward network.
type Network struct {
	id           uuid.UUID
	name         string
	arch         []int
	layers       []Layer
	learningRate float64
}

type options struct {
	rng          *rand.Rand
	hidden       activation.Kind
	output       activation.Kind
	learningRate float64
	name         string
	id           uuid.UUID
}

// Option configures New.
type Option func(*options)

// WithSeed seeds the weight initializer.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand uses rng for weight initialization.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithActivations overrides the hidden and output activations.
func WithActivations(hidden, output activation.Kind) Option {
	return func(o *options) {
		o.hidden = hidden
		o.output = output
	}
}

// WithLearningRate sets the default learning rate reported by LearningRate.
func WithLearningRate(lr float64) Option {
	return func(o *options) { o.learningRate = lr }
}

// WithName sets a human-readable model name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithID sets the model identifier instead of generating a random one.
func WithID(id uuid.UUID) Option {
	return func(o *options) { o.id = id }
}

// New creates a network for the given layer widths [n0, n1, ..., nk].
//
// Weights are Xavier-scaled uniform values, biases start at zero.
// Returns ErrInvalidArchitecture if fewer than two widths are given or any
// width is below 1.
func New(arch []int, opts ...Option) (*Network, error) {
	if err := validateArchitecture(arch); err != nil {
		return nil, err
	}
	o := options{
		hidden:       activation.ReLU,
		output:       activation.Sigmoid,
		learningRate: DefaultLearningRate,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hidden.Valid() || !o.output.Valid() {
		return nil, fmt.Errorf("%w: unknown activation", ErrInvalidArchitecture)
	}
	if o.rng == nil {
		//nolint:gosec // math/rand is fine for weight initialization
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}

	n := &Network{
		id:           o.id,
		name:         o.name,
		arch:         append([]int(nil), arch...),
		layers:       make([]Layer, len(arch)-1),
		learningRate: o.learningRate,
	}
	for i := range n.layers {
		w, err := xavier(arch[i], arch[i+1], o.rng)
		if err != nil {
			return nil, err
		}
		b, err := matrix.New(arch[i+1], 1)
		if err != nil {
			return nil, err
		}
		n.layers[i] = Layer{Weights: w, Bias: b, Activation: o.hidden}
	}
	n.layers[len(n.layers)-1].Activation = o.output
	return n, nil
}

// FromParameters rebuilds a network from existing parameters, e.g. ones
// read from a model file. The matrices are copied. Every shape is checked
// against arch.
func FromParameters(arch []int, weights, biases []*matrix.Matrix, hidden, output activation.Kind, opts ...Option) (*Network, error) {
	if err := validateArchitecture(arch); err != nil {
		return nil, err
	}
	k := len(arch) - 1
	if len(weights) != k || len(biases) != k {
		return nil, fmt.Errorf("%w: %d weights and %d biases for %d layers", ErrInvalidArchitecture, len(weights), len(biases), k)
	}
	if !hidden.Valid() || !output.Valid() {
		return nil, fmt.Errorf("%w: unknown activation", ErrInvalidArchitecture)
	}
	o := options{learningRate: DefaultLearningRate}
	for _, opt := range opts {
		opt(&o)
	}

	n := &Network{
		id:           o.id,
		name:         o.name,
		arch:         append([]int(nil), arch...),
		layers:       make([]Layer, k),
		learningRate: o.learningRate,
	}
	for i := 0; i < k; i++ {
		wantW := matrix.Shape{Rows: arch[i+1], Cols: arch[i]}
		wantB := matrix.Shape{Rows: arch[i+1], Cols: 1}
		if weights[i] == nil || weights[i].Shape() != wantW {
			return nil, fmt.Errorf("%w: layer %d weights must be %s", ErrInvalidArchitecture, i, wantW)
		}
		if biases[i] == nil || biases[i].Shape() != wantB {
			return nil, fmt.Errorf("%w: layer %d bias must be %s", ErrInvalidArchitecture, i, wantB)
		}
		act := hidden
		if i == k-1 {
			act = output
		}
		n.layers[i] = Layer{Weights: weights[i].Clone(), Bias: biases[i].Clone(), Activation: act}
	}
	return n, nil
}

func validateArchitecture(arch []int) error {
	if len(arch) < 2 {
		return fmt.Errorf("%w: need at least input and output widths, got %v", ErrInvalidArchitecture, arch)
	}
	for i, w := range arch {
		if w < 1 {
			return fmt.Errorf("%w: layer %d has width %d", ErrInvalidArchitecture, i, w)
		}
	}
	return nil
}

// ID returns the model identifier.
func (n *Network) ID() uuid.UUID { return n.id }

// Name returns the model name.
func (n *Network) Name() string { return n.name }

// SetName renames the model.
func (n *Network) SetName(name string) { n.name = name }

// Architecture returns a copy of the layer widths.
func (n *Network) Architecture() []int { return append([]int(nil), n.arch...) }

// InputSize returns arch[0].
func (n *Network) InputSize() int { return n.arch[0] }

// OutputSize returns the last layer width.
func (n *Network) OutputSize() int { return n.arch[len(n.arch)-1] }

// LayerCount returns the number of dense layers (len(arch) - 1).
func (n *Network) LayerCount() int { return len(n.layers) }

// Layer returns layer i. The matrices are shared with the network; callers
// must not modify them.
func (n *Network) Layer(i int) Layer { return n.layers[i] }

// HiddenActivation returns the activation of the hidden layers.
// For a single-layer network this is the output activation.
func (n *Network) HiddenActivation() activation.Kind { return n.layers[0].Activation }

// OutputActivation returns the activation of the last layer.
func (n *Network) OutputActivation() activation.Kind {
	return n.layers[len(n.layers)-1].Activation
}

// LearningRate returns the default learning rate.
func (n *Network) LearningRate() float64 { return n.learningRate }

// SetLearningRate changes the default learning rate.
func (n *Network) SetLearningRate(lr float64) { n.learningRate = lr }

// Clone returns a deep copy sharing no parameter storage with n.
// A clone is the read-only snapshot workers compute gradients against.
func (n *Network) Clone() *Network {
	c := &Network{
		id:           n.id,
		name:         n.name,
		arch:         append([]int(nil), n.arch...),
		layers:       make([]Layer, len(n.layers)),
		learningRate: n.learningRate,
	}
	for i, l := range n.layers {
		c.layers[i] = Layer{Weights: l.Weights.Clone(), Bias: l.Bias.Clone(), Activation: l.Activation}
	}
	return c
}

// NumParameters returns the total count of weights and biases.
func (n *Network) NumParameters() int {
	total := 0
	for _, l := range n.layers {
		total += l.Weights.Shape().NumElements() + l.Bias.Shape().NumElements()
	}
	return total
}
