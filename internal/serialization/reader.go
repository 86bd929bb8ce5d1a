package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/network"
)

// ReadHeader parses and validates the fixed and JSON headers of blob and
// verifies the data checksum. It returns the header, the flags, and the
// data section.
func ReadHeader(blob []byte) (*Header, uint32, []byte, error) {
	if len(blob) < FixedHeaderSize {
		return nil, 0, nil, fmt.Errorf("%w: %d bytes, fixed header needs %d", ErrTruncated, len(blob), FixedHeaderSize)
	}
	if string(blob[0:4]) != MagicBytes {
		return nil, 0, nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(blob[4:8]); version != FormatVersion {
		return nil, 0, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	flags := binary.LittleEndian.Uint32(blob[8:12])
	headerSize := binary.LittleEndian.Uint64(blob[16:24])
	dataSize := binary.LittleEndian.Uint64(blob[24:32])

	if headerSize > MaxHeaderSize {
		return nil, 0, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	dataOffset := alignedDataOffset(int64(headerSize))
	if dataSize > uint64(len(blob)) || uint64(dataOffset)+dataSize != uint64(len(blob)) {
		return nil, 0, nil, fmt.Errorf("%w: file has %d bytes, header declares %d", ErrTruncated, len(blob), uint64(dataOffset)+dataSize)
	}
	data := blob[dataOffset:]

	if sum := sha256.Sum256(data); !bytes.Equal(sum[:], blob[ChecksumOffset:ChecksumOffset+ChecksumSize]) {
		return nil, 0, nil, ErrChecksumMismatch
	}

	var header Header
	if err := json.Unmarshal(blob[FixedHeaderSize:FixedHeaderSize+int64(headerSize)], &header); err != nil {
		return nil, 0, nil, fmt.Errorf("%w: failed to parse header JSON: %v", ErrInvalidModel, err)
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return nil, 0, nil, err
	}
	return &header, flags, data, nil
}

// Unmarshal decodes a .dnet blob. The architecture is checked against exp
// before any parameter is decoded.
func Unmarshal(blob []byte, exp Expectation) (*Model, error) {
	header, flags, data, err := ReadHeader(blob)
	if err != nil {
		return nil, err
	}
	arch := header.Architecture
	if len(arch) < 2 {
		return nil, fmt.Errorf("%w: architecture %v", ErrInvalidModel, arch)
	}
	if err := exp.check(arch); err != nil {
		return nil, err
	}

	byName := make(map[string]TensorMeta, len(header.Tensors))
	for _, t := range header.Tensors {
		byName[t.Name] = t
	}
	want := expectedShapes(arch)
	if flags&FlagHasScaler != 0 {
		want[tensorScalerMin] = []int{arch[0]}
		want[tensorScalerMax] = []int{arch[0]}
	}
	if flags&FlagHasOutputScaler != 0 {
		want[tensorOutputScalerMin] = []int{arch[len(arch)-1]}
		want[tensorOutputScalerMax] = []int{arch[len(arch)-1]}
	}
	if len(want) != len(byName) {
		return nil, &ValidationError{Type: "tensor_set", Details: fmt.Sprintf("file has %d tensors, architecture %v needs %d", len(byName), arch, len(want))}
	}
	for name, shape := range want {
		t, ok := byName[name]
		if !ok {
			return nil, &ValidationError{Type: "missing_tensor", Tensor: name, Details: "not in file"}
		}
		if !slices.Equal(t.Shape, shape) {
			return nil, &ValidationError{Type: "invalid_shape", Tensor: name, Details: fmt.Sprintf("shape %v, expected %v", t.Shape, shape)}
		}
	}

	k := len(arch) - 1
	weights := make([]*matrix.Matrix, k)
	biases := make([]*matrix.Matrix, k)
	for i := 0; i < k; i++ {
		if weights[i], err = matrix.FromSlice(arch[i+1], arch[i], decode(data, byName[weightName(i)])); err != nil {
			return nil, err
		}
		if biases[i], err = matrix.FromSlice(arch[i+1], 1, decode(data, byName[biasName(i)])); err != nil {
			return nil, err
		}
	}

	id, err := uuid.Parse(header.ModelID)
	if err != nil {
		return nil, fmt.Errorf("%w: model id %q: %v", ErrInvalidModel, header.ModelID, err)
	}
	net, err := network.FromParameters(arch, weights, biases, header.HiddenActivation, header.OutputActivation,
		network.WithID(id), network.WithName(header.ModelName), network.WithLearningRate(header.LearningRate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	m := &Model{
		Network:   net,
		Training:  header.Training,
		Metadata:  header.Metadata,
		CreatedAt: header.CreatedAt,
	}
	if flags&FlagHasScaler != 0 {
		m.Scaler = &dataset.Scaler{Min: decode(data, byName[tensorScalerMin]), Max: decode(data, byName[tensorScalerMax])}
	}
	if flags&FlagHasOutputScaler != 0 {
		m.OutputScaler = &dataset.Scaler{Min: decode(data, byName[tensorOutputScalerMin]), Max: decode(data, byName[tensorOutputScalerMax])}
	}
	return m, nil
}

// decode reads t's float64 values; t has already passed ValidateHeader.
func decode(data []byte, t TensorMeta) []float64 {
	out := make([]float64, t.Size/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[t.Offset+int64(i)*8:]))
	}
	return out
}
