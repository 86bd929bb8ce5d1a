package trainer

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects how concurrent batches update the shared network.
type Strategy int

const (
	// ParallelGradient computes each batch's gradients against a private
	// snapshot of the network and applies the averaged gradient once, under
	// the write lock. Batches run truly in parallel.
	ParallelGradient Strategy = iota
	// SerializedApply runs every per-example TrainStep under one mutex.
	// Workers interleave but never overlap, so it is effectively online SGD.
	SerializedApply
)

var strategyNames = map[Strategy]string{
	ParallelGradient: "parallel-gradient",
	SerializedApply:  "serialized-apply",
}

// String returns the strategy name used in configs and on the command line.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy converts a name such as "parallel-gradient" to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for s, n := range strategyNames {
		if n == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// DefaultShutdownGrace bounds how long Train waits for in-flight batches
// when it stops.
const DefaultShutdownGrace = 60 * time.Second

// Config holds the training hyperparameters and scheduling knobs.
type Config struct {
	Epochs        int
	LearningRate  float64
	BatchSize     int
	Workers       int // 0 means runtime.NumCPU()
	Strategy      Strategy
	ShutdownGrace time.Duration // 0 means DefaultShutdownGrace
	Seed          int64 // shuffling seed; 0 means time-based
}

// DefaultConfig returns the stock hyperparameters: 100 epochs, learning rate
// 0.01, batches of 32, one worker per CPU, a 60s shutdown grace.
func DefaultConfig() Config {
	return Config{
		Epochs:        100,
		LearningRate:  0.01,
		BatchSize:     32,
		Strategy:      ParallelGradient,
		ShutdownGrace: DefaultShutdownGrace,
	}
}

// Validate verifies the config is runnable.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0 (got %d)", ErrInvalidConfig, c.Epochs)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be > 0 (got %g)", ErrInvalidConfig, c.LearningRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be > 0 (got %d)", ErrInvalidConfig, c.BatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0 (got %d)", ErrInvalidConfig, c.Workers)
	}
	if _, ok := strategyNames[c.Strategy]; !ok {
		return fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfig, int(c.Strategy))
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("%w: shutdown grace must be >= 0 (got %s)", ErrInvalidConfig, c.ShutdownGrace)
	}
	return nil
}
