package network

import "gonum.org/v1/gonum/floats"

// ArgMax turns an output vector into a class and its confidence.
//
// For a single output the value is read as a probability: class 1 with
// confidence y when y >= 0.5, otherwise class 0 with confidence 1-y. For
// wider outputs the class is the index of the largest value and the
// confidence is that value divided by the sum of the outputs.
// An empty output yields class -1.
func ArgMax(output []float64) (class int, confidence float64) {
	switch len(output) {
	case 0:
		return -1, 0
	case 1:
		if output[0] >= 0.5 {
			return 1, output[0]
		}
		return 0, 1 - output[0]
	}
	class = floats.MaxIdx(output)
	sum := floats.Sum(output)
	if sum <= 0 {
		return class, 0
	}
	return class, output[class] / sum
}
