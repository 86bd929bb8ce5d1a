package trainer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/network"
)

func xorData(t *testing.T) *dataset.TrainingData {
	t.Helper()
	d, err := dataset.New(
		[][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		[][]float64{{0}, {1}, {1}, {0}},
	)
	require.NoError(t, err)
	return d
}

func quiet() *log.Logger { return log.New(&bytes.Buffer{}, "", 0) }

func xorSolved(t *testing.T, n *network.Network) bool {
	t.Helper()
	inputs := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	targets := []float64{0, 1, 1, 0}
	total := 0.0
	for i, in := range inputs {
		out, err := n.Predict(in)
		require.NoError(t, err)
		d := out[0] - targets[i]
		total += d * d
		if class, _ := network.ArgMax(out); float64(class) != targets[i] {
			return false
		}
	}
	return total/4 < 0.05
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	for name, mut := range map[string]func(*Config){
		"epochs":   func(c *Config) { c.Epochs = 0 },
		"lr":       func(c *Config) { c.LearningRate = -1 },
		"batch":    func(c *Config) { c.BatchSize = 0 },
		"workers":  func(c *Config) { c.Workers = -2 },
		"strategy": func(c *Config) { c.Strategy = Strategy(7) },
		"grace":    func(c *Config) { c.ShutdownGrace = -time.Second },
	} {
		cfg := DefaultConfig()
		mut(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"parallel-gradient": ParallelGradient,
		"Serialized_Apply":  SerializedApply,
		" serialized-apply": SerializedApply,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
		assert.Equal(t, strings.ReplaceAll(strings.ToLower(strings.TrimSpace(in)), "_", "-"), got.String())
	}
	_, err := ParseStrategy("hogwild")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte("serialized-apply")))
	assert.Equal(t, SerializedApply, s)
}

func TestNew_UsesNetworkLearningRate(t *testing.T) {
	n, err := network.New([]int{2, 2, 1}, network.WithSeed(1), network.WithLearningRate(0.3))
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.LearningRate = 0

	tr, err := New(n, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.3, tr.Config().LearningRate)
	assert.Equal(t, Idle, tr.State())

	_, err = New(nil, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_BoundsShutdownGrace(t *testing.T) {
	n, err := network.New([]int{2, 2, 1}, network.WithSeed(1))
	require.NoError(t, err)

	tr, err := New(n, Config{Epochs: 1, LearningRate: 0.1, BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultShutdownGrace, tr.Config().ShutdownGrace)

	tr, err = New(n, Config{Epochs: 1, LearningRate: 0.1, BatchSize: 1, ShutdownGrace: time.Second})
	require.NoError(t, err)
	assert.Equal(t, time.Second, tr.Config().ShutdownGrace)
}

func TestTrain_XOR(t *testing.T) {
	for _, tc := range []struct {
		name     string
		strategy Strategy
		arch     []int
	}{
		{"serialized-apply/2-3-1", SerializedApply, []int{2, 3, 1}},
		{"parallel-gradient/2-3-1", ParallelGradient, []int{2, 3, 1}},
		{"parallel-gradient/2-8-1", ParallelGradient, []int{2, 8, 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Small ReLU layers can die for unlucky initializations.
			for seed := int64(1); seed <= 25; seed++ {
				n, err := network.New(tc.arch, network.WithSeed(seed))
				require.NoError(t, err)
				tr, err := New(n, Config{
					Epochs:       3000,
					LearningRate: 0.5,
					BatchSize:    1,
					Workers:      2,
					Strategy:     tc.strategy,
					Seed:         seed,
				}, WithLogger(quiet()), WithProgress(func(Progress) {}))
				require.NoError(t, err)

				res, err := tr.Train(context.Background(), xorData(t))
				require.NoError(t, err)
				require.Equal(t, 3000, res.Epochs)
				assert.Zero(t, res.FailedBatches)
				assert.Equal(t, Finished, tr.State())
				if xorSolved(t, n) {
					assert.Less(t, res.FinalLoss, res.Losses[0])
					return
				}
			}
			t.Fatal("no seed solved XOR")
		})
	}
}

func TestTrain_ProgressPerEpoch(t *testing.T) {
	n, err := network.New([]int{2, 4, 1}, network.WithSeed(3))
	require.NoError(t, err)

	var got []Progress
	tr, err := New(n, Config{Epochs: 5, LearningRate: 0.1, BatchSize: 3, Workers: 2, Seed: 1},
		WithProgress(func(p Progress) { got = append(got, p) }))
	require.NoError(t, err)

	res, err := tr.Train(context.Background(), xorData(t))
	require.NoError(t, err)

	require.Len(t, got, 5)
	for i, p := range got {
		assert.Equal(t, i+1, p.Epoch)
		assert.Equal(t, 5, p.Epochs)
		assert.Equal(t, res.Losses[i], p.Loss)
	}
	assert.Equal(t, res.Losses[4], res.FinalLoss)
}

func TestTrain_FailedBatchesAreContained(t *testing.T) {
	for name, hook := range map[string]func(dataset.Batch) error{
		"error": func(b dataset.Batch) error {
			if b.Index == 0 {
				return errors.New("boom")
			}
			return nil
		},
		"panic": func(b dataset.Batch) error {
			if b.Index == 0 {
				panic("boom")
			}
			return nil
		},
	} {
		t.Run(name, func(t *testing.T) {
			n, err := network.New([]int{2, 4, 1}, network.WithSeed(1))
			require.NoError(t, err)
			var logs syncBuffer
			tr, err := New(n, Config{Epochs: 3, LearningRate: 0.1, BatchSize: 2, Workers: 2, Seed: 1},
				WithLogger(log.New(&logs, "", 0)), WithProgress(func(Progress) {}))
			require.NoError(t, err)
			tr.beforeBatch = hook

			res, err := tr.Train(context.Background(), xorData(t))
			require.NoError(t, err)
			assert.Equal(t, 3, res.Epochs)
			assert.Equal(t, 3, res.FailedBatches)
			assert.Equal(t, Finished, tr.State())
			assert.Equal(t, 3, strings.Count(logs.String(), "WARNING: batch 0: "))
			for _, l := range res.Losses {
				assert.GreaterOrEqual(t, l, 0.0)
			}
		})
	}
}

func TestTrain_FailedBatchCountsAsZeroLoss(t *testing.T) {
	n, err := network.New([]int{2, 4, 1}, network.WithSeed(1))
	require.NoError(t, err)
	// One batch holding all four examples: when it fails the epoch loss is 0.
	tr, err := New(n, Config{Epochs: 1, LearningRate: 0.1, BatchSize: 4, Workers: 1, Seed: 1},
		WithLogger(quiet()))
	require.NoError(t, err)
	tr.beforeBatch = func(dataset.Batch) error { panic("always") }

	res, err := tr.Train(context.Background(), xorData(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, res.Losses)
	assert.Equal(t, 1, res.FailedBatches)
}

func TestTrain_DimensionMismatch(t *testing.T) {
	n, err := network.New([]int{3, 2, 1}, network.WithSeed(1))
	require.NoError(t, err)
	tr, err := New(n, DefaultConfig(), WithLogger(quiet()))
	require.NoError(t, err)

	_, err = tr.Train(context.Background(), xorData(t))
	assert.ErrorIs(t, err, network.ErrDimensionMismatch)

	empty, err := dataset.New(nil, nil)
	require.NoError(t, err)
	_, err = tr.Train(context.Background(), empty)
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestTrain_Cancelled(t *testing.T) {
	n, err := network.New([]int{2, 4, 1}, network.WithSeed(1))
	require.NoError(t, err)
	before := n.Clone()
	tr, err := New(n, DefaultConfig(), WithLogger(quiet()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := tr.Train(ctx, xorData(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Epochs)
	assert.Equal(t, Finished, tr.State())

	out, _ := n.Predict([]float64{1, 0})
	want, _ := before.Predict([]float64{1, 0})
	assert.Equal(t, want, out, "no epoch ran, parameters untouched")
}

func TestTrain_CancelBetweenEpochs(t *testing.T) {
	n, err := network.New([]int{2, 4, 1}, network.WithSeed(1))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr, err := New(n, Config{Epochs: 50, LearningRate: 0.1, BatchSize: 2, Workers: 2, Seed: 1},
		WithProgress(func(p Progress) {
			if p.Epoch == 2 {
				cancel()
			}
		}))
	require.NoError(t, err)

	res, err := tr.Train(ctx, xorData(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.Epochs)
	assert.Len(t, res.Losses, 2)
}

func TestTrain_CancelMidEpoch(t *testing.T) {
	n, err := network.New([]int{2, 4, 1}, network.WithSeed(1))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs syncBuffer
	tr, err := New(n, Config{Epochs: 5, LearningRate: 0.1, BatchSize: 1, Workers: 1, Seed: 1},
		WithLogger(log.New(&logs, "", 0)))
	require.NoError(t, err)
	tr.beforeBatch = func(b dataset.Batch) error {
		if b.Index == 1 {
			cancel()
		}
		return nil
	}

	res, err := tr.Train(ctx, xorData(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "2 of 4 batches skipped")
	assert.Zero(t, res.Epochs, "interrupted epoch is not recorded")
	assert.Empty(t, res.Losses)
	assert.Zero(t, res.FailedBatches, "skipped batches are not failures")
	assert.NotContains(t, logs.String(), "WARNING")
	assert.Contains(t, logs.String(), "epoch=1/5 stopped")
	assert.Equal(t, Finished, tr.State())
}

func TestPredictParallel(t *testing.T) {
	n, err := network.New([]int{4, 6, 3}, network.WithSeed(5))
	require.NoError(t, err)
	tr, err := New(n, Config{Epochs: 1, LearningRate: 0.1, BatchSize: 1, Workers: 4})
	require.NoError(t, err)

	inputs := make([][]float64, 100)
	for i := range inputs {
		inputs[i] = []float64{float64(i) / 100, 0.5, -0.25, float64(i % 7)}
	}
	got, err := tr.PredictParallel(inputs)
	require.NoError(t, err)
	for i, in := range inputs {
		want, err := n.Predict(in)
		require.NoError(t, err)
		assert.Equal(t, want, got[i])
	}

	_, err = tr.PredictParallel([][]float64{{1, 2}})
	assert.ErrorIs(t, err, network.ErrDimensionMismatch)
}

func TestFormatProgress(t *testing.T) {
	s := FormatProgress(Progress{Epoch: 3, Epochs: 100, Loss: 0.125, Elapsed: 2500 * time.Millisecond})
	assert.Equal(t, "3/100 - loss: 0.125000 - elapsed: 2s", s)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "batch-await", BatchAwait.String())
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "unknown", State(42).String())
}

// syncBuffer is a bytes.Buffer safe for concurrent log writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
