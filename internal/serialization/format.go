package serialization

import (
	"time"

	"github.com/born-ml/densenet/internal/activation"
)

// Format constants.
const (
	MagicBytes      = "DNET"
	FormatVersion   = 1    // v1: fixed header with SHA-256 checksum
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	Extension       = ".dnet"
)

// DTypeFloat64 is the only element type stored in .dnet files.
const DTypeFloat64 = "float64"

// Flags for the .dnet format.
const (
	FlagHasScaler       uint32 = 1 << 0 // bit 0: input scaler included
	FlagHasOutputScaler uint32 = 1 << 1 // bit 1: output scaler included
	FlagHasTraining     uint32 = 1 << 2 // bit 2: training summary included
	FlagHasMetadata     uint32 = 1 << 3 // bit 3: custom metadata included
)

// Tensor names.
const (
	tensorScalerMin       = "scaler.min"
	tensorScalerMax       = "scaler.max"
	tensorOutputScalerMin = "output_scaler.min"
	tensorOutputScalerMax = "output_scaler.max"
)

// Header represents the JSON header in a .dnet file.
type Header struct {
	FormatVersion    int               `json:"format_version"`       // Version of the .dnet format
	CreatedAt        time.Time         `json:"created_at"`           // When the file was created
	ModelID          string            `json:"model_id"`             // Network UUID
	ModelName        string            `json:"model_name,omitempty"` // Human readable name
	Architecture     []int             `json:"architecture"`         // Layer widths, input first
	HiddenActivation activation.Kind   `json:"hidden_activation"`    // Activation of every hidden layer
	OutputActivation activation.Kind   `json:"output_activation"`    // Activation of the output layer
	LearningRate     float64           `json:"learning_rate"`        // Default learning rate
	Tensors          []TensorMeta      `json:"tensors"`              // Tensor metadata
	Training         *TrainingMeta     `json:"training,omitempty"`   // Training summary (optional)
	Metadata         map[string]string `json:"metadata,omitempty"`   // Custom metadata
}

// TrainingMeta summarizes the run that produced a model.
type TrainingMeta struct {
	Epochs        int     `json:"epochs"`
	FinalLoss     float64 `json:"final_loss"`
	BatchSize     int     `json:"batch_size"`
	Strategy      string  `json:"strategy"`
	Examples      int     `json:"examples"`
	FailedBatches int     `json:"failed_batches,omitempty"`
	OneHot        bool    `json:"one_hot,omitempty"`
	Classes       int     `json:"classes,omitempty"`
	Dataset       string  `json:"dataset,omitempty"`
}

// TensorMeta describes a tensor in the .dnet file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "layers.0.weight")
	DType  string `json:"dtype"`  // Always "float64"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// numElements returns the element count of shape, or false when it exceeds
// limit. Dimensions must already be positive.
func numElements(shape []int, limit int64) (int64, bool) {
	n := int64(1)
	for _, d := range shape {
		if int64(d) > limit/n {
			return 0, false
		}
		n *= int64(d)
	}
	return n, true
}

func alignedDataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
