package serialization

import (
	"fmt"
	"slices"
	"time"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/network"
)

// Model is everything a .dnet file carries: the network plus what is needed
// to use it on raw data.
type Model struct {
	Network      *network.Network
	Scaler       *dataset.Scaler // input normalization, optional
	OutputScaler *dataset.Scaler // target normalization, optional
	Training     *TrainingMeta   // optional
	Metadata     map[string]string
	CreatedAt    time.Time // set by Marshal when zero; filled by Unmarshal
}

// Expectation constrains the architecture accepted by Unmarshal and Load.
// Zero fields accept anything.
type Expectation struct {
	Architecture []int
	InputSize    int
	OutputSize   int
}

func (e Expectation) check(arch []int) error {
	if e.Architecture != nil && !slices.Equal(e.Architecture, arch) {
		return fmt.Errorf("%w: file has %v, expected %v", ErrArchitectureMismatch, arch, e.Architecture)
	}
	if e.InputSize > 0 && arch[0] != e.InputSize {
		return fmt.Errorf("%w: file takes %d inputs, expected %d", ErrArchitectureMismatch, arch[0], e.InputSize)
	}
	if out := arch[len(arch)-1]; e.OutputSize > 0 && out != e.OutputSize {
		return fmt.Errorf("%w: file has %d outputs, expected %d", ErrArchitectureMismatch, out, e.OutputSize)
	}
	return nil
}

// Normalize applies the input scaler to v. Without a scaler v is returned
// unchanged.
func (m *Model) Normalize(v []float64) ([]float64, error) {
	if m.Scaler == nil {
		return v, nil
	}
	return m.Scaler.Transform(v)
}

// Denormalize maps a network output back to the target's original range.
// Without an output scaler v is returned unchanged.
func (m *Model) Denormalize(v []float64) ([]float64, error) {
	if m.OutputScaler == nil {
		return v, nil
	}
	return m.OutputScaler.Inverse(v)
}
