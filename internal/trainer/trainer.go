// Package trainer orchestrates data-parallel training of a network.
//
// Each epoch the examples are shuffled, split into batches, and one task per
// batch is dispatched to a worker pool. The epoch ends at a single barrier
// once every batch has reported; epochs never overlap. How concurrent batches
// update the shared network is chosen by Strategy.
package trainer

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/network"
	"github.com/born-ml/densenet/internal/parallel"
)

// Trainer owns a network for the duration of training and serializes
// access to it according to its Strategy.
type Trainer struct {
	net      *network.Network
	cfg      Config
	logger   *log.Logger
	progress func(Progress)

	mu    sync.RWMutex // guards net's parameters
	state atomic.Int32

	// beforeBatch runs at the start of every batch task; tests use it to
	// inject failures.
	beforeBatch func(dataset.Batch) error
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger for warnings and per-epoch lines.
func WithLogger(l *log.Logger) Option {
	return func(t *Trainer) { t.logger = l }
}

// WithProgress registers fn to receive a Progress after every epoch. When set,
// the trainer no longer logs epochs itself.
func WithProgress(fn func(Progress)) Option {
	return func(t *Trainer) { t.progress = fn }
}

// New creates a Trainer for net. A zero LearningRate in cfg falls back to
// the network's own learning rate and a zero ShutdownGrace to
// DefaultShutdownGrace, so the final pool shutdown is always bounded.
func New(net *network.Network, cfg Config, opts ...Option) (*Trainer, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: nil network", ErrInvalidConfig)
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = net.LearningRate()
	}
	if cfg.ShutdownGrace == 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Trainer{net: net, cfg: cfg, logger: log.Default()}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.Default()
	}
	return t, nil
}

// Network returns the network being trained.
func (t *Trainer) Network() *network.Network { return t.net }

// Config returns the effective configuration.
func (t *Trainer) Config() Config { return t.cfg }

// State returns the current orchestrator state. Safe for concurrent use.
func (t *Trainer) State() State { return State(t.state.Load()) }

func (t *Trainer) setState(s State) { t.state.Store(int32(s)) }

// Train runs cfg.Epochs epochs over data and returns per-epoch losses.
//
// data is shuffled in place. The epoch loss is the sum of the batch mean
// losses divided by the batch count; failed batches add zero. Cancelling ctx
// stops dispatch: running batches finish and the remaining ones are skipped
// without being counted as failures. An interrupted epoch is not recorded;
// Train returns the Result of the completed epochs and an error wrapping
// ctx.Err().
func (t *Trainer) Train(ctx context.Context, data *dataset.TrainingData) (Result, error) {
	if data == nil || data.Size() == 0 {
		return Result{}, dataset.ErrEmptyDataset
	}
	if data.InputSize() != t.net.InputSize() {
		return Result{}, &network.DimensionError{What: "dataset input", Got: data.InputSize(), Want: t.net.InputSize()}
	}
	if data.OutputSize() != t.net.OutputSize() {
		return Result{}, &network.DimensionError{What: "dataset output", Got: data.OutputSize(), Want: t.net.OutputSize()}
	}

	seed := t.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pool := parallel.NewPool(t.cfg.Workers)
	start := time.Now()
	res := Result{Losses: make([]float64, 0, t.cfg.Epochs)}

	var runErr error
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		loss, failed, err := t.runEpoch(ctx, pool, data, rng)
		if err != nil {
			t.logger.Printf("epoch=%d/%d stopped: %v", epoch, t.cfg.Epochs, err)
			runErr = err
			break
		}
		res.Epochs = epoch
		res.FinalLoss = loss
		res.Losses = append(res.Losses, loss)
		res.FailedBatches += failed

		p := Progress{Epoch: epoch, Epochs: t.cfg.Epochs, Loss: loss, Elapsed: time.Since(start), FailedBatches: failed}
		if t.progress != nil {
			t.progress(p)
		} else {
			t.logger.Printf("epoch=%d/%d loss=%.6f failed_batches=%d elapsed=%s", epoch, t.cfg.Epochs, loss, failed, p.Elapsed.Round(time.Millisecond))
		}
		if runErr = ctx.Err(); runErr != nil {
			break
		}
	}

	if err := pool.Shutdown(t.cfg.ShutdownGrace); err != nil {
		t.logger.Printf("WARNING: %v (grace=%s)", err, t.cfg.ShutdownGrace)
	}
	res.Elapsed = time.Since(start)
	t.setState(Finished)
	return res, runErr
}

func (t *Trainer) runEpoch(ctx context.Context, pool *parallel.Pool, data *dataset.TrainingData, rng *rand.Rand) (float64, int, error) {
	t.setState(EpochRunning)
	data.Shuffle(rng)
	batches, err := data.SplitIntoBatches(t.cfg.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	losses := make([]float64, len(batches))
	var (
		wg      sync.WaitGroup
		failed  atomic.Int64
		skipped atomic.Int64
	)
	t.setState(BatchDispatch)
	for _, b := range batches {
		b := b
		wg.Add(1)
		err := pool.Submit(func(poolCtx context.Context) {
			defer wg.Done()
			if ctx.Err() != nil || poolCtx.Err() != nil {
				skipped.Add(1)
				return
			}
			loss, err := t.runBatch(b)
			if err != nil {
				failed.Add(1)
				t.logger.Printf("WARNING: %v", err)
				return
			}
			losses[b.Index] = loss
		})
		if err != nil {
			wg.Done()
			failed.Add(1)
			t.logger.Printf("WARNING: %v", &BatchError{Batch: b.Index, Err: err})
		}
	}

	t.setState(BatchAwait)
	wg.Wait()
	if n := skipped.Load(); n > 0 {
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return 0, 0, fmt.Errorf("epoch interrupted, %d of %d batches skipped: %w", n, len(batches), cause)
	}
	t.setState(EpochComplete)

	total := 0.0
	for _, l := range losses {
		total += l
	}
	return total / float64(len(batches)), int(failed.Load()), nil
}

// runBatch trains on one batch and returns its mean example loss. Errors and
// panics come back as *BatchError.
func (t *Trainer) runBatch(b dataset.Batch) (loss float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			loss, err = 0, &BatchError{Batch: b.Index, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if t.beforeBatch != nil {
		if err := t.beforeBatch(b); err != nil {
			return 0, &BatchError{Batch: b.Index, Err: err}
		}
	}

	var total float64
	switch t.cfg.Strategy {
	case SerializedApply:
		total, err = t.serializedApply(b)
	default:
		total, err = t.parallelGradient(b)
	}
	if err != nil {
		return 0, &BatchError{Batch: b.Index, Err: err}
	}
	return total / float64(b.Size()), nil
}

func (t *Trainer) serializedApply(b dataset.Batch) (float64, error) {
	total := 0.0
	for i := range b.Inputs {
		t.mu.Lock()
		l, err := t.net.TrainStep(b.Inputs[i], b.Outputs[i], t.cfg.LearningRate)
		t.mu.Unlock()
		if err != nil {
			return 0, fmt.Errorf("example %d: %w", i, err)
		}
		total += l
	}
	return total, nil
}

func (t *Trainer) parallelGradient(b dataset.Batch) (float64, error) {
	t.mu.RLock()
	snapshot := t.net.Clone()
	t.mu.RUnlock()

	g := network.NewGradients(snapshot)
	total := 0.0
	for i := range b.Inputs {
		l, err := snapshot.AccumulateGradients(g, b.Inputs[i], b.Outputs[i])
		if err != nil {
			return 0, fmt.Errorf("example %d: %w", i, err)
		}
		total += l
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.net.Apply(g, t.cfg.LearningRate); err != nil {
		return 0, err
	}
	return total, nil
}

// PredictParallel runs Predict over many inputs concurrently. It holds the
// read lock for the whole call, so parameter updates from a concurrent Train
// wait until it returns.
func (t *Trainer) PredictParallel(inputs [][]float64) ([][]float64, error) {
	out := make([][]float64, len(inputs))
	errs := make([]error, len(inputs))

	t.mu.RLock()
	parallel.For(len(inputs), func(i int) {
		out[i], errs[i] = t.net.Predict(inputs[i])
	}, parallel.WithWorkers(t.cfg.Workers))
	t.mu.RUnlock()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}
	return out, nil
}
