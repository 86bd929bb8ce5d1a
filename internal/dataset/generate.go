package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// Table is a generated dataset: a header and numeric rows whose last column
// is the label.
type Table struct {
	Header []string
	Rows   [][]float64
}

// Generator builds a synthetic Table.
type Generator func(rng *rand.Rand) Table

var generators = map[string]Generator{
	"xor":     XOR,
	"linear":  Linear,
	"circles": Circles,
	"large":   Large,
}

// Generators returns the names accepted by Generate, sorted.
func Generators() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds the named synthetic dataset.
func Generate(kind string, rng *rand.Rand) (Table, error) {
	gen, ok := generators[strings.ToLower(kind)]
	if !ok {
		return Table{}, fmt.Errorf("unknown dataset kind %q (want one of %s)", kind, strings.Join(Generators(), ", "))
	}
	return gen(rng), nil
}

// XOR is the four-row exclusive-or truth table.
func XOR(*rand.Rand) Table {
	return Table{
		Header: []string{"x1", "x2", "output"},
		Rows:   [][]float64{{0, 0, 0}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0}},
	}
}

// Linear samples 100 points of y = 2x + 1 with N(0, 0.5²) noise, x in [0, 10).
func Linear(rng *rand.Rand) Table {
	t := Table{Header: []string{"x", "y"}}
	for i := 0; i < 100; i++ {
		x := rng.Float64() * 10
		t.Rows = append(t.Rows, []float64{x, 2*x + 1 + rng.NormFloat64()*0.5})
	}
	return t
}

// Circles samples 500 points from two noisy concentric rings: radius ~1
// (class 0) and radius ~3 (class 1).
func Circles(rng *rand.Rand) Table {
	t := Table{Header: []string{"x", "y", "class"}}
	for i := 0; i < 500; i++ {
		angle := rng.Float64() * 2 * math.Pi
		radius, class := 3+rng.NormFloat64()*0.2, 1.0
		if rng.Intn(2) == 0 {
			radius, class = 1+rng.NormFloat64()*0.2, 0
		}
		t.Rows = append(t.Rows, []float64{radius * math.Cos(angle), radius * math.Sin(angle), class})
	}
	return t
}

// Large samples 10000 rows of 20 standard-normal features; the label is 1
// when the features sum to a positive value.
func Large(rng *rand.Rand) Table {
	const samples, features = 10000, 20
	t := Table{Header: make([]string, 0, features+1)}
	for j := 0; j < features; j++ {
		t.Header = append(t.Header, "f"+strconv.Itoa(j))
	}
	t.Header = append(t.Header, "target")
	for i := 0; i < samples; i++ {
		row := make([]float64, features+1)
		sum := 0.0
		for j := 0; j < features; j++ {
			row[j] = rng.NormFloat64()
			sum += row[j]
		}
		if sum > 0 {
			row[features] = 1
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteCSV writes t as CSV with four decimals per value.
func WriteCSV(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(t.Header, delimiter) + "\n"); err != nil {
		return err
	}
	cells := make([]string, 0, len(t.Header))
	for _, row := range t.Rows {
		cells = cells[:0]
		for _, v := range row {
			cells = append(cells, strconv.FormatFloat(v, 'f', 4, 64))
		}
		if _, err := bw.WriteString(strings.Join(cells, delimiter) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
