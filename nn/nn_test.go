// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/densenet/nn"
)

// TestEndToEnd trains, saves and reloads a network through the public API.
func TestEndToEnd(t *testing.T) {
	data, err := nn.NewTrainingData(
		[][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		[][]float64{{0}, {1}, {1}, {1}},
	)
	require.NoError(t, err)

	net, err := nn.NewNetwork([]int{2, 4, 1}, nn.WithSeed(2), nn.WithActivations(nn.Tanh, nn.Sigmoid))
	require.NoError(t, err)

	cfg := nn.DefaultTrainerConfig()
	cfg.Epochs, cfg.LearningRate, cfg.BatchSize, cfg.Seed = 500, 0.5, 1, 1
	cfg.Strategy = nn.SerializedApply
	epochs := 0
	tr, err := nn.NewTrainer(net, cfg, nn.WithProgress(func(nn.Progress) { epochs++ }))
	require.NoError(t, err)

	res, err := tr.Train(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 500, epochs)
	assert.Less(t, res.FinalLoss, res.Losses[0])

	path, err := nn.ModelPath(t.TempDir(), "or")
	require.NoError(t, err)
	require.NoError(t, nn.SaveModel(path, &nn.Model{Network: net}))

	m, err := nn.LoadModel(path, nn.Expectation{Architecture: []int{2, 4, 1}})
	require.NoError(t, err)
	for _, in := range [][]float64{{0, 0}, {1, 1}} {
		want, err := net.Predict(in)
		require.NoError(t, err)
		got, err := m.Network.Predict(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, filepath.Ext(path), ".dnet")
}

func TestParseActivation(t *testing.T) {
	a, err := nn.ParseActivation("Leaky-ReLU")
	require.NoError(t, err)
	assert.Equal(t, nn.LeakyReLU, a)

	class, conf := nn.ArgMax([]float64{0.2, 0.6, 0.2})
	assert.Equal(t, 1, class)
	assert.InDelta(t, 0.6, conf, 1e-12)
}

func TestLoadCSV(t *testing.T) {
	_, err := nn.LoadCSV(filepath.Join(t.TempDir(), "none.csv"), nn.LoadOptions{Logger: log.New(&bytes.Buffer{}, "", 0)})
	assert.Error(t, err)
}
