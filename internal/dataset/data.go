// Package dataset holds in-memory training examples and the tools that
// produce them: CSV ingestion with min-max normalization, input vector
// parsing for inference, and synthetic dataset generators.
package dataset

import (
	"fmt"
	"math/rand"
)

// TrainingData is a parallel collection of input and target vectors.
//
// Row i of Inputs pairs with row i of Outputs. Shuffle and SplitIntoBatches
// only reorder or partition rows; the numbers themselves are never changed.
type TrainingData struct {
	inputs  [][]float64
	outputs [][]float64
}

// Example is one input/target pair.
type Example struct {
	Input  []float64
	Output []float64
}

// New validates and wraps inputs and outputs. The outer slices are copied;
// the rows are shared.
func New(inputs, outputs [][]float64) (*TrainingData, error) {
	if len(inputs) != len(outputs) {
		return nil, fmt.Errorf("%w: %d inputs, %d outputs", ErrLengthMismatch, len(inputs), len(outputs))
	}
	if err := checkUniform("input", inputs); err != nil {
		return nil, err
	}
	if err := checkUniform("output", outputs); err != nil {
		return nil, err
	}
	return &TrainingData{
		inputs:  append([][]float64(nil), inputs...),
		outputs: append([][]float64(nil), outputs...),
	}, nil
}

func checkUniform(what string, rows [][]float64) error {
	if len(rows) == 0 {
		return nil
	}
	width := len(rows[0])
	if width == 0 {
		return &RecordError{Reason: what + " 0 is empty"}
	}
	for i, r := range rows {
		if len(r) != width {
			return &RecordError{Reason: fmt.Sprintf("%s %d has width %d, expected %d", what, i, len(r), width)}
		}
	}
	return nil
}

// Size returns the number of examples.
func (d *TrainingData) Size() int { return len(d.inputs) }

// InputSize returns the input width, or 0 for an empty set.
func (d *TrainingData) InputSize() int {
	if len(d.inputs) == 0 {
		return 0
	}
	return len(d.inputs[0])
}

// OutputSize returns the target width, or 0 for an empty set.
func (d *TrainingData) OutputSize() int {
	if len(d.outputs) == 0 {
		return 0
	}
	return len(d.outputs[0])
}

// Example returns pair i.
func (d *TrainingData) Example(i int) Example {
	return Example{Input: d.inputs[i], Output: d.outputs[i]}
}

// Inputs returns the input rows in current order.
func (d *TrainingData) Inputs() [][]float64 { return d.inputs }

// Outputs returns the target rows in current order.
func (d *TrainingData) Outputs() [][]float64 { return d.outputs }

// Shuffle permutes the examples in place (Fisher-Yates), moving each input
// together with its target.
func (d *TrainingData) Shuffle(rng *rand.Rand) {
	for i := len(d.inputs) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.inputs[i], d.inputs[j] = d.inputs[j], d.inputs[i]
		d.outputs[i], d.outputs[j] = d.outputs[j], d.outputs[i]
	}
}

// Batch is a contiguous view of TrainingData rows.
type Batch struct {
	Index   int // position of the batch within its split
	Inputs  [][]float64
	Outputs [][]float64
}

// Size returns the number of examples in the batch.
func (b Batch) Size() int { return len(b.Inputs) }

// SplitIntoBatches partitions the examples, in their current order, into
// ceil(n/size) batches of size examples; the last batch holds the remainder.
// A size larger than the data yields one batch.
//
// Batches are views: they stay valid until the next Shuffle.
func (d *TrainingData) SplitIntoBatches(size int) ([]Batch, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	n := len(d.inputs)
	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		batches = append(batches, Batch{
			Index:   len(batches),
			Inputs:  d.inputs[start:end:end],
			Outputs: d.outputs[start:end:end],
		})
	}
	return batches, nil
}
