package verify

import (
	"context"
	"image"
)

// Strategy scores a photo for tree content. Confidence is in [0,1]; a record
// is verified only when the confidence strictly exceeds the strategy's own
// threshold.
type Strategy interface {
	Name() string
	Threshold() float64
	Predict(ctx context.Context, img image.Image) (float64, error)
}

// Result is the verification outcome handed back to submission handlers.
type Result struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}
