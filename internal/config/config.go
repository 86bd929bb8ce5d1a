// Package config loads the YAML run configuration of the densenet command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/densenet/internal/activation"
	"github.com/born-ml/densenet/internal/trainer"
)

// Config captures the knobs for a training run.
type Config struct {
	HiddenLayers     []int         `yaml:"hidden_layers"`
	Epochs           int           `yaml:"epochs"`
	LearningRate     float64       `yaml:"learning_rate"`
	BatchSize        int           `yaml:"batch_size"`
	Workers          int           `yaml:"workers"`
	Strategy         string        `yaml:"strategy"`
	ShutdownGrace    time.Duration `yaml:"shutdown_grace"`
	Seed             int64         `yaml:"seed"`
	ModelsDir        string        `yaml:"models_dir"`
	HiddenActivation string        `yaml:"hidden_activation"`
	OutputActivation string        `yaml:"output_activation"`
	OneHot           bool          `yaml:"one_hot"`
}

// Overrides captures CLI supplied values. Zero values leave the config alone.
type Overrides struct {
	HiddenLayers []int
	Epochs       int
	LearningRate float64
	BatchSize    int
	Workers      int
	Strategy     string
	Seed         int64
	ModelsDir    string
	OneHot       bool
}

// Default returns the stock configuration: two hidden layers of 64 and 32
// ReLU units, a sigmoid output, 100 epochs at learning rate 0.01, batches of
// 32, one worker per CPU.
func Default() *Config {
	return &Config{
		HiddenLayers:     []int{64, 32},
		Epochs:           100,
		LearningRate:     0.01,
		BatchSize:        32,
		Workers:          0,
		Strategy:         trainer.ParallelGradient.String(),
		ShutdownGrace:    60 * time.Second,
		Seed:             0,
		ModelsDir:        "models",
		HiddenActivation: activation.ReLU.String(),
		OutputActivation: activation.Sigmoid.String(),
	}
}

// Load reads and validates a Config from YAML. Keys missing from the file
// keep their Default values; unknown keys are an error. An empty path
// returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Default(). It does not validate.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if len(o.HiddenLayers) > 0 {
		c.HiddenLayers = append([]int(nil), o.HiddenLayers...)
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.Strategy != "" {
		c.Strategy = o.Strategy
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.ModelsDir != "" {
		c.ModelsDir = o.ModelsDir
	}
	if o.OneHot {
		c.OneHot = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	for i, w := range c.HiddenLayers {
		if w <= 0 {
			return fmt.Errorf("hidden_layers[%d] must be > 0 (got %d)", i, w)
		}
	}
	if c.ModelsDir == "" {
		return errors.New("models_dir must be set")
	}
	if _, _, err := c.Activations(); err != nil {
		return err
	}
	if _, err := c.TrainerConfig(); err != nil {
		return err
	}
	return nil
}

// Activations returns the parsed hidden and output activations.
func (c *Config) Activations() (hidden, output activation.Kind, err error) {
	if hidden, err = activation.ParseKind(c.HiddenActivation); err != nil {
		return 0, 0, fmt.Errorf("hidden_activation: %w", err)
	}
	if output, err = activation.ParseKind(c.OutputActivation); err != nil {
		return 0, 0, fmt.Errorf("output_activation: %w", err)
	}
	return hidden, output, nil
}

// TrainerConfig converts c into a validated trainer.Config.
func (c *Config) TrainerConfig() (trainer.Config, error) {
	strategy, err := trainer.ParseStrategy(c.Strategy)
	if err != nil {
		return trainer.Config{}, fmt.Errorf("strategy: %w", err)
	}
	tc := trainer.Config{
		Epochs:        c.Epochs,
		LearningRate:  c.LearningRate,
		BatchSize:     c.BatchSize,
		Workers:       c.Workers,
		Strategy:      strategy,
		ShutdownGrace: c.ShutdownGrace,
		Seed:          c.Seed,
	}
	if err := tc.Validate(); err != nil {
		return trainer.Config{}, err
	}
	return tc, nil
}

// Architecture returns [inputs, hidden..., outputs].
func (c *Config) Architecture(inputs, outputs int) []int {
	arch := make([]int, 0, len(c.HiddenLayers)+2)
	arch = append(arch, inputs)
	arch = append(arch, c.HiddenLayers...)
	return append(arch, outputs)
}
