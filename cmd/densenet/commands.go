package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/network"
	"github.com/born-ml/densenet/internal/serialization"
	"github.com/born-ml/densenet/internal/sysinfo"
	"github.com/born-ml/densenet/internal/trainer"
)

func runTrain(ctx context.Context, opts options, datasetPath, modelID string, stdout io.Writer, logger *log.Logger) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	modelPath, err := serialization.ModelPath(cfg.ModelsDir, modelID)
	if err != nil {
		return err
	}
	tc, err := cfg.TrainerConfig()
	if err != nil {
		return err
	}
	if tc.Workers == 0 {
		tc.Workers = sysinfo.DefaultWorkers()
	}

	fmt.Fprintf(stdout, "Dataset: %s\n", datasetPath)
	fmt.Fprintf(stdout, "Model ID: %s\n", modelID)
	fmt.Fprintf(stdout, "Workers: %d (%s)\n", tc.Workers, tc.Strategy)

	loaded, err := dataset.LoadCSV(datasetPath, dataset.LoadOptions{OneHot: cfg.OneHot, Logger: logger})
	if err != nil {
		return err
	}
	data := loaded.Data
	fmt.Fprintf(stdout, "Examples: %d\n", data.Size())
	fmt.Fprintf(stdout, "Features: %d\n", data.InputSize())
	fmt.Fprintf(stdout, "Outputs: %d\n", data.OutputSize())

	hidden, output, err := cfg.Activations()
	if err != nil {
		return err
	}
	netOpts := []network.Option{
		network.WithActivations(hidden, output),
		network.WithLearningRate(cfg.LearningRate),
		network.WithName(modelID),
	}
	if cfg.Seed != 0 {
		netOpts = append(netOpts, network.WithSeed(cfg.Seed))
	}
	net, err := network.New(cfg.Architecture(data.InputSize(), data.OutputSize()), netOpts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Architecture: %v (%d parameters)\n", net.Architecture(), net.NumParameters())

	tr, err := trainer.New(net, tc,
		trainer.WithLogger(logger),
		trainer.WithProgress(func(p trainer.Progress) {
			fmt.Fprintln(stdout, trainer.FormatProgress(p))
		}))
	if err != nil {
		return err
	}
	res, err := tr.Train(ctx, data)
	if err != nil {
		return fmt.Errorf("training stopped after %d epoch(s): %w", res.Epochs, err)
	}

	model := &serialization.Model{
		Network:      net,
		Scaler:       loaded.InputScaler,
		OutputScaler: loaded.OutputScaler,
		Training: &serialization.TrainingMeta{
			Epochs:        res.Epochs,
			FinalLoss:     res.FinalLoss,
			BatchSize:     tc.BatchSize,
			Strategy:      tc.Strategy.String(),
			Examples:      data.Size(),
			FailedBatches: res.FailedBatches,
			OneHot:        cfg.OneHot,
			Classes:       loaded.Classes,
			Dataset:       filepath.Base(datasetPath),
		},
	}
	if err := serialization.Save(modelPath, model); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Final loss: %f\n", res.FinalLoss)
	fmt.Fprintf(stdout, "Model saved to: %s\n", modelPath)
	fmt.Fprintln(stdout, "Status: SUCCESS")
	return nil
}

func runPredict(opts options, modelID, vector string, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	path, err := serialization.ModelPath(cfg.ModelsDir, modelID)
	if err != nil {
		return err
	}
	m, err := serialization.Load(path, serialization.Expectation{})
	if err != nil {
		return err
	}

	input, err := dataset.ParseInputVector(vector)
	if err != nil {
		return err
	}
	if len(input) != m.Network.InputSize() {
		return &network.DimensionError{What: "input", Got: len(input), Want: m.Network.InputSize()}
	}
	if !opts.rawInput {
		if input, err = m.Normalize(input); err != nil {
			return err
		}
	}
	out, err := m.Network.Predict(input)
	if err != nil {
		return err
	}

	if opts.class {
		class, confidence := network.ArgMax(out)
		_, err = fmt.Fprintf(stdout, "class=%d confidence=%.2f%%\n", class, confidence*100)
		return err
	}
	if opts.denormalize {
		if out, err = m.Denormalize(out); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(stdout, formatVector(out))
	return err
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func runInfo(stdout io.Writer) error {
	return sysinfo.Collect().Write(stdout)
}

func runGenerate(opts options, kind, outPath string, stdout io.Writer) error {
	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // math/rand is fine for synthetic data
	table, err := dataset.Generate(kind, rand.New(rand.NewSource(seed)))
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	//nolint:gosec // G304: output path comes from the user
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := dataset.WriteCSV(f, table); err != nil {
		_ = f.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Wrote %d rows (%s) to %s\n", len(table.Rows), strings.ToLower(kind), outPath)
	return err
}
