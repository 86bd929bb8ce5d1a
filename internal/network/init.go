package network

import (
	"math"
	"math/rand"

	"github.com/born-ml/densenet/internal/matrix"
)

// xavier returns a fanOut x fanIn weight matrix drawn from
// U(-1, 1) / sqrt(fanIn), keeping activation variance stable across depth.
func xavier(fanIn, fanOut int, rng *rand.Rand) (*matrix.Matrix, error) {
	w, err := matrix.New(fanOut, fanIn)
	if err != nil {
		return nil, err
	}
	scale := 1 / math.Sqrt(float64(fanIn))
	for i := 0; i < fanOut; i++ {
		for j := 0; j < fanIn; j++ {
			//nolint:gosec // math/rand is fine for weight initialization
			w.Set(i, j, (rng.Float64()*2-1)*scale)
		}
	}
	return w, nil
}
