package trainer

import (
	"fmt"
	"time"
)

// Progress is reported once per completed epoch.
type Progress struct {
	Epoch         int // 1-based
	Epochs        int
	Loss          float64
	Elapsed       time.Duration // since Train started
	FailedBatches int           // in this epoch
}

// FormatProgress renders p as "epoch/total - loss: <loss> - elapsed: <s>s".
func FormatProgress(p Progress) string {
	return fmt.Sprintf("%d/%d - loss: %f - elapsed: %ds", p.Epoch, p.Epochs, p.Loss, int(p.Elapsed.Seconds()))
}

// Result summarizes a finished (or cancelled) run.
type Result struct {
	Epochs        int       // epochs completed
	FinalLoss     float64   // loss of the last completed epoch
	Losses        []float64 // per-epoch loss
	FailedBatches int       // across all epochs
	Elapsed       time.Duration
}
