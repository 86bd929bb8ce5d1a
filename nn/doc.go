// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn is the public API for building, training and persisting dense
// feed-forward networks.
//
// # Overview
//
// This package contains:
//   - Network: fully connected layers with Xavier initialization
//   - Activations: Sigmoid, ReLU, Tanh, LeakyReLU, Softmax
//   - Training: a data-parallel Trainer with two update strategies
//   - Data: TrainingData, CSV loading with min-max scaling
//   - Persistence: the versioned .dnet model format
//
// # Basic Usage
//
//	import "github.com/born-ml/densenet/nn"
//
//	func main() {
//	    data, _ := nn.NewTrainingData(
//	        [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
//	        [][]float64{{0}, {1}, {1}, {0}},
//	    )
//
//	    net, _ := nn.NewNetwork([]int{2, 8, 1}, nn.WithSeed(1))
//
//	    cfg := nn.DefaultTrainerConfig()
//	    cfg.Epochs, cfg.LearningRate, cfg.BatchSize = 2000, 0.5, 1
//	    trainer, _ := nn.NewTrainer(net, cfg)
//	    result, _ := trainer.Train(context.Background(), data)
//
//	    out, _ := net.Predict([]float64{1, 0})
//	    _ = nn.SaveModel("models/xor.dnet", &nn.Model{Network: net})
//	}
//
// # Strategies
//
// ParallelGradient (default): every batch computes its gradient against a
// private snapshot of the network and applies the averaged gradient once.
//
// SerializedApply: every per-example update runs under one mutex, which is
// equivalent to online stochastic gradient descent.
package nn
