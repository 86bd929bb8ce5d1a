package dataset

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
)

const delimiter = ","

// MaxClasses bounds the label of a one-hot dataset; larger labels are
// malformed records.
const MaxClasses = 4096

// maxLineBytes bounds a single CSV line (a 28x28 image row is ~4KB).
const maxLineBytes = 16 * 1024 * 1024

// LoadOptions configures CSV ingestion.
type LoadOptions struct {
	// OneHot expands the integer label column into a one-hot target vector
	// instead of min-max scaling it.
	OneHot bool
	// Logger receives warnings for skipped records. Defaults to log.Default().
	Logger *log.Logger
}

// LoadReport summarizes an ingestion run.
type LoadReport struct {
	Lines    int      // lines read, including blank ones
	Examples int      // rows kept
	Skipped  int      // malformed rows
	Header   []string // column names, if a header line was found
}

// Loaded is the result of LoadCSV.
type Loaded struct {
	Data         *TrainingData
	InputScaler  *Scaler
	OutputScaler *Scaler // nil when OneHot is set
	Classes      int     // number of one-hot classes, 0 otherwise
	Report       LoadReport
}

// LoadCSV reads a dataset from a comma-separated file.
//
// Every column but the last is a feature, the last is the label. A first
// line containing any non-numeric cell is treated as a header. Lines that
// are not fully numeric, have fewer than two columns or disagree with the
// first data row's width are skipped with a warning. Inputs and outputs are
// then min-max normalized per column into [0, 1].
//
// Returns ErrEmptyDataset if no row survives.
func LoadCSV(path string, opts LoadOptions) (*Loaded, error) {
	//nolint:gosec // G304: dataset path comes from the user
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Load(f, opts)
}

// Load is LoadCSV over an io.Reader.
func Load(r io.Reader, opts LoadOptions) (*Loaded, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var (
		report  LoadReport
		inputs  [][]float64
		labels  []float64
		width   int
		started bool
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		report.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, delimiter)
		if !started {
			started = true
			if isHeader(parts) {
				for _, p := range parts {
					report.Header = append(report.Header, strings.TrimSpace(p))
				}
				continue
			}
		}

		row, err := parseRecord(report.Lines, parts, width)
		if err != nil {
			report.Skipped++
			logger.Printf("WARNING: skipping record: %v", err)
			continue
		}
		if width == 0 {
			width = len(row)
		}
		label := row[len(row)-1]
		if opts.OneHot && (label < 0 || label >= MaxClasses || label != math.Trunc(label)) {
			report.Skipped++
			logger.Printf("WARNING: skipping record: %v", &RecordError{Line: report.Lines, Reason: fmt.Sprintf("label %v is not a class index", label)})
			continue
		}
		inputs = append(inputs, row[:len(row)-1])
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w (%d lines read, %d skipped)", ErrEmptyDataset, report.Lines, report.Skipped)
	}
	report.Examples = len(inputs)

	out := &Loaded{Report: report, InputScaler: FitScaler(inputs)}
	normInputs, err := out.InputScaler.transformAll(inputs)
	if err != nil {
		return nil, err
	}

	var outputs [][]float64
	if opts.OneHot {
		outputs, out.Classes = oneHot(labels)
	} else {
		raw := make([][]float64, len(labels))
		for i, l := range labels {
			raw[i] = []float64{l}
		}
		out.OutputScaler = FitScaler(raw)
		if outputs, err = out.OutputScaler.transformAll(raw); err != nil {
			return nil, err
		}
	}

	if out.Data, err = New(normInputs, outputs); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRecord(line int, parts []string, width int) ([]float64, error) {
	if len(parts) < 2 {
		return nil, &RecordError{Line: line, Reason: fmt.Sprintf("%d column(s), need at least 2", len(parts))}
	}
	if width > 0 && len(parts) != width {
		return nil, &RecordError{Line: line, Reason: fmt.Sprintf("%d columns, expected %d", len(parts), width)}
	}
	row := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &RecordError{Line: line, Reason: fmt.Sprintf("column %d: %q is not a number", i+1, p)}
		}
		row[i] = v
	}
	return row, nil
}

func isHeader(parts []string) bool {
	for _, p := range parts {
		if _, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return true
		}
	}
	return false
}

func oneHot(labels []float64) ([][]float64, int) {
	classes := 0
	for _, l := range labels {
		classes = max(classes, int(l)+1)
	}
	out := make([][]float64, len(labels))
	for i, l := range labels {
		out[i] = make([]float64, classes)
		out[i][int(l)] = 1
	}
	return out, classes
}

// ParseInputVector parses an inference request such as "0.5,0.1,0.9" or
// "[0.5, 0.1, 0.9]".
func ParseInputVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil, &RecordError{Reason: "empty input vector"}
	}
	parts := strings.Split(s, delimiter)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, &RecordError{Reason: fmt.Sprintf("element %d: %q is not a number", i, strings.TrimSpace(p))}
		}
		out[i] = v
	}
	return out, nil
}
