// Package main provides the densenet command: train a dense network on a CSV
// dataset, predict with a saved model, describe the host, and generate
// synthetic datasets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/born-ml/densenet/internal/config"
)

const version = "v0.1.0"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	configPath  string
	epochs      int
	lr          float64
	batch       int
	hidden      string
	workers     int
	strategy    string
	seed        int64
	modelsDir   string
	oneHot      bool
	class       bool
	rawInput    bool
	denormalize bool
}

// errUsage marks errors caused by a malformed command line.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("densenet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML config")
	fs.IntVar(&opts.epochs, "epochs", 0, "Number of training epochs")
	fs.Float64Var(&opts.lr, "lr", 0, "Learning rate")
	fs.IntVar(&opts.batch, "batch", 0, "Batch size")
	fs.StringVar(&opts.hidden, "hidden", "", "Hidden layer widths, e.g. 64,32")
	fs.IntVar(&opts.workers, "workers", 0, "Worker goroutines (0 = one per core)")
	fs.StringVar(&opts.strategy, "strategy", "", "Update strategy: parallel-gradient or serialized-apply")
	fs.Int64Var(&opts.seed, "seed", 0, "PRNG seed (0 = time based)")
	fs.StringVar(&opts.modelsDir, "models", "", "Directory holding .dnet model files")
	fs.BoolVar(&opts.oneHot, "one-hot", false, "Treat the label column as a class index")
	fs.BoolVar(&opts.class, "class", false, "predict: print the winning class and its confidence")
	fs.BoolVar(&opts.rawInput, "raw-input", false, "predict: skip input normalization")
	fs.BoolVar(&opts.denormalize, "denormalize", false, "predict: map outputs back to the target range")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage(fs)
		return exitUsage
	}

	logger := log.New(stderr, "", log.LstdFlags)
	cmd, rest := strings.ToLower(fs.Arg(0)), fs.Args()[1:]

	var err error
	switch cmd {
	case "train":
		err = withArgs(rest, 2, func() error { return runTrain(ctx, opts, rest[0], rest[1], stdout, logger) })
	case "predict":
		err = withArgs(rest, 2, func() error { return runPredict(opts, rest[0], rest[1], stdout) })
	case "info":
		err = withArgs(rest, 0, func() error { return runInfo(stdout) })
	case "generate":
		err = withArgs(rest, 2, func() error { return runGenerate(opts, rest[0], rest[1], stdout) })
	case "version":
		err = withArgs(rest, 0, func() error {
			_, err := fmt.Fprintf(stdout, "densenet %s\n", version)
			return err
		})
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		usage(fs)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitError
	}
}

func withArgs(args []string, n int, fn func() error) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, n, len(args))
	}
	return fn()
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "Usage: densenet [flags] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train <dataset.csv> <model-id>    Train a network and save it")
	fmt.Fprintln(w, "  predict <model-id> <v1,v2,...>    Run a saved model on one input")
	fmt.Fprintln(w, "  info                              Describe the host")
	fmt.Fprintln(w, "  generate <kind> <out.csv>         Write a synthetic dataset (xor, linear, circles, large)")
	fmt.Fprintln(w, "  version                           Show version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}

// loadConfig reads -config and applies the command-line overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	hidden, err := parseWidths(opts.hidden)
	if err != nil {
		return nil, fmt.Errorf("%w: -hidden: %v", errUsage, err)
	}
	cfg.ApplyOverrides(config.Overrides{
		HiddenLayers: hidden,
		Epochs:       opts.epochs,
		LearningRate: opts.lr,
		BatchSize:    opts.batch,
		Workers:      opts.workers,
		Strategy:     opts.strategy,
		Seed:         opts.seed,
		ModelsDir:    opts.modelsDir,
		OneHot:       opts.oneHot,
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseWidths(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || w < 1 {
			return nil, fmt.Errorf("invalid width %q", p)
		}
		out[i] = w
	}
	return out, nil
}
