// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/densenet/internal/activation"
	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/network"
	"github.com/born-ml/densenet/internal/serialization"
	"github.com/born-ml/densenet/internal/trainer"
)

// Matrix is a dense row-major float64 matrix.
type Matrix = matrix.Matrix

// Network

// Network is a fully connected feed-forward network.
type Network = network.Network

// Option configures NewNetwork.
type Option = network.Option

// Gradients accumulates parameter gradients for one or more examples.
type Gradients = network.Gradients

// Trace holds the pre-activations and activations of one forward pass.
type Trace = network.Trace

// NewNetwork creates a network with layer widths arch, input first.
//
// Example:
//
//	net, err := nn.NewNetwork([]int{784, 64, 32, 10},
//	    nn.WithActivations(nn.ReLU, nn.Softmax))
func NewNetwork(arch []int, opts ...Option) (*Network, error) {
	return network.New(arch, opts...)
}

// WithSeed makes weight initialization deterministic.
func WithSeed(seed int64) Option { return network.WithSeed(seed) }

// WithActivations sets the hidden and output activations.
func WithActivations(hidden, output Activation) Option {
	return network.WithActivations(hidden, output)
}

// WithLearningRate sets the network's default learning rate.
func WithLearningRate(lr float64) Option { return network.WithLearningRate(lr) }

// WithName names the network.
func WithName(name string) Option { return network.WithName(name) }

// ArgMax returns the winning class of an output vector and its share of the
// output mass. A single output is thresholded at 0.5.
func ArgMax(output []float64) (class int, confidence float64) {
	return network.ArgMax(output)
}

// Activations

// Activation identifies an activation function.
type Activation = activation.Kind

// Supported activations.
const (
	Sigmoid   = activation.Sigmoid
	ReLU      = activation.ReLU
	Tanh      = activation.Tanh
	LeakyReLU = activation.LeakyReLU
	Softmax   = activation.Softmax
)

// ParseActivation parses an activation name such as "relu".
func ParseActivation(name string) (Activation, error) { return activation.ParseKind(name) }

// Data

// TrainingData is a parallel collection of input and target vectors.
type TrainingData = dataset.TrainingData

// Scaler performs per-column min-max normalization.
type Scaler = dataset.Scaler

// LoadOptions configures LoadCSV.
type LoadOptions = dataset.LoadOptions

// Loaded is the result of LoadCSV.
type Loaded = dataset.Loaded

// NewTrainingData validates and wraps inputs and targets.
func NewTrainingData(inputs, outputs [][]float64) (*TrainingData, error) {
	return dataset.New(inputs, outputs)
}

// LoadCSV reads a normalized dataset from a CSV file whose last column is
// the label.
func LoadCSV(path string, opts LoadOptions) (*Loaded, error) {
	return dataset.LoadCSV(path, opts)
}

// Training

// Trainer orchestrates data-parallel training.
type Trainer = trainer.Trainer

// TrainerConfig holds training hyperparameters.
type TrainerConfig = trainer.Config

// TrainerOption configures NewTrainer.
type TrainerOption = trainer.Option

// Progress is reported after every epoch.
type Progress = trainer.Progress

// Result summarizes a training run.
type Result = trainer.Result

// Strategy selects how concurrent batches update the network.
type Strategy = trainer.Strategy

// Update strategies.
const (
	ParallelGradient = trainer.ParallelGradient
	SerializedApply  = trainer.SerializedApply
)

// DefaultTrainerConfig returns 100 epochs, learning rate 0.01, batch size 32.
func DefaultTrainerConfig() TrainerConfig { return trainer.DefaultConfig() }

// NewTrainer creates a Trainer for net.
func NewTrainer(net *Network, cfg TrainerConfig, opts ...TrainerOption) (*Trainer, error) {
	return trainer.New(net, cfg, opts...)
}

// WithProgress registers a per-epoch callback.
func WithProgress(fn func(Progress)) TrainerOption { return trainer.WithProgress(fn) }

// FormatProgress renders p as "epoch/total - loss: <loss> - elapsed: <s>s".
func FormatProgress(p Progress) string { return trainer.FormatProgress(p) }

// Persistence

// Model is a network plus its scalers and training summary.
type Model = serialization.Model

// Expectation constrains the architecture accepted by LoadModel.
type Expectation = serialization.Expectation

// SaveModel writes m to path in the .dnet format.
func SaveModel(path string, m *Model) error { return serialization.Save(path, m) }

// LoadModel reads a .dnet file.
func LoadModel(path string, exp Expectation) (*Model, error) { return serialization.Load(path, exp) }

// ModelPath returns <dir>/<modelID>.dnet.
func ModelPath(dir, modelID string) (string, error) { return serialization.ModelPath(dir, modelID) }
