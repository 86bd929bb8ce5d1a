package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/born-ml/densenet/internal/dataset"
)

// tensor is a named float64 array queued for writing.
type tensor struct {
	name  string
	shape []int
	data  []float64
}

// Marshal encodes m in the .dnet format. Every float64 is stored bit for bit,
// so Unmarshal reproduces the network exactly.
func Marshal(m *Model) ([]byte, error) {
	if m == nil || m.Network == nil {
		return nil, fmt.Errorf("%w: no network to save", ErrInvalidModel)
	}
	net := m.Network

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	header := Header{
		FormatVersion:    FormatVersion,
		CreatedAt:        createdAt,
		ModelID:          net.ID().String(),
		ModelName:        net.Name(),
		Architecture:     net.Architecture(),
		HiddenActivation: net.HiddenActivation(),
		OutputActivation: net.OutputActivation(),
		LearningRate:     net.LearningRate(),
		Training:         m.Training,
		Metadata:         m.Metadata,
	}

	tensors := make([]tensor, 0, 2*net.LayerCount()+4)
	for i := 0; i < net.LayerCount(); i++ {
		l := net.Layer(i)
		tensors = append(tensors,
			tensor{name: weightName(i), shape: []int{l.Weights.Rows(), l.Weights.Cols()}, data: l.Weights.Data()},
			tensor{name: biasName(i), shape: []int{l.Bias.Rows(), 1}, data: l.Bias.Data()},
		)
	}

	var flags uint32
	if m.Scaler != nil {
		if m.Scaler.Width() != net.InputSize() {
			return nil, fmt.Errorf("%w: input scaler width %d, network takes %d", ErrInvalidModel, m.Scaler.Width(), net.InputSize())
		}
		flags |= FlagHasScaler
		tensors = append(tensors, scalerTensors(tensorScalerMin, tensorScalerMax, m.Scaler)...)
	}
	if m.OutputScaler != nil {
		if m.OutputScaler.Width() != net.OutputSize() {
			return nil, fmt.Errorf("%w: output scaler width %d, network has %d outputs", ErrInvalidModel, m.OutputScaler.Width(), net.OutputSize())
		}
		flags |= FlagHasOutputScaler
		tensors = append(tensors, scalerTensors(tensorOutputScalerMin, tensorOutputScalerMax, m.OutputScaler)...)
	}
	if m.Training != nil {
		flags |= FlagHasTraining
	}
	if len(m.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	// Calculate tensor offsets
	var dataSize int64
	header.Tensors = make([]TensorMeta, 0, len(tensors))
	for _, t := range tensors {
		size := int64(len(t.data)) * 8
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   t.name,
			DType:  DTypeFloat64,
			Shape:  t.shape,
			Offset: dataSize,
			Size:   size,
		})
		dataSize += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, len(headerJSON))
	}

	dataOffset := alignedDataOffset(int64(len(headerJSON)))
	buf := make([]byte, dataOffset+dataSize)
	data := buf[dataOffset:]
	for i, t := range tensors {
		off := header.Tensors[i].Offset
		for j, v := range t.data {
			binary.LittleEndian.PutUint64(data[off+int64(j)*8:], math.Float64bits(v))
		}
	}

	// Fixed header; reserved bytes and padding stay zero.
	copy(buf[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(buf[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], flags)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(len(headerJSON)))
	//nolint:gosec // G115: dataSize is a sum of non-negative sizes
	binary.LittleEndian.PutUint64(buf[24:32], uint64(dataSize))
	checksum := sha256.Sum256(data)
	copy(buf[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])
	copy(buf[FixedHeaderSize:], headerJSON)

	return buf, nil
}

func scalerTensors(minName, maxName string, s *dataset.Scaler) []tensor {
	return []tensor{
		{name: minName, shape: []int{s.Width()}, data: s.Min},
		{name: maxName, shape: []int{s.Width()}, data: s.Max},
	}
}
