package verify

import (
	"context"
	"fmt"
	"image"
)

const (
	// A pixel is green-dominant when its green channel exceeds red and blue
	// by greenMargin and is above greenFloor in absolute terms.
	greenMargin = 20
	greenFloor  = 60

	// The green-pixel fraction is normalised against this and capped.
	greenNormalizer = 0.3
	maxConfidence   = 0.95

	heuristicThreshold = 0.4
)

// Heuristic is the fallback verification strategy: no model, just the
// fraction of green-dominant pixels in the photo.
type Heuristic struct{}

// NewHeuristic creates the color-heuristic strategy.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) Threshold() float64 { return heuristicThreshold }

// Predict scans the full pixel grid and returns
// min(greenFraction/0.3, 0.95).
func (h *Heuristic) Predict(ctx context.Context, img image.Image) (float64, error) {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0, fmt.Errorf("empty image")
	}

	greenPixels := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r, g, b := int(r16>>8), int(g16>>8), int(b16>>8)
			if g > r+greenMargin && g > b+greenMargin && g > greenFloor {
				greenPixels++
			}
		}
	}

	confidence := (float64(greenPixels) / float64(total)) / greenNormalizer
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return confidence, nil
}
