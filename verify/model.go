package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"sync"
	"sync/atomic"
)

const modelThreshold = 0.6

// modelFile is the serialized classifier: a single linear layer over the
// flattened, normalised RGB grid, with one weight row and bias per class.
type modelFile struct {
	InputSize int         `json:"input_size"`
	Classes   []string    `json:"classes"`
	Weights   [][]float64 `json:"weights"`
	Bias      []float64   `json:"bias"`
}

// Model is the classifier-backed verification strategy. Loading is lazy and
// asynchronous: Load returns immediately and Ready reports whether the
// weights have settled. Until then — or forever, if loading failed — callers
// fall back to the heuristic strategy.
type Model struct {
	path string

	once   sync.Once
	ready  atomic.Bool
	failed atomic.Bool

	mu      sync.RWMutex
	weights *modelFile
}

// NewModel creates a model strategy reading weights from path. Nothing is
// loaded until Load is called.
func NewModel(path string) *Model {
	return &Model{path: path}
}

func (m *Model) Name() string { return "model" }

func (m *Model) Threshold() float64 { return modelThreshold }

// Load starts the one-time asynchronous weight load. Safe to call more than
// once; only the first call does anything.
func (m *Model) Load() {
	m.once.Do(func() {
		go func() {
			weights, err := readModelFile(m.path)
			if err != nil {
				m.failed.Store(true)
				return
			}
			m.mu.Lock()
			m.weights = weights
			m.mu.Unlock()
			m.ready.Store(true)
		}()
	})
}

// Ready reports whether the model can serve predictions.
func (m *Model) Ready() bool {
	return m.ready.Load()
}

// Failed reports whether the load ended in error, which makes the fallback
// permanent.
func (m *Model) Failed() bool {
	return m.failed.Load()
}

// Predict resizes the image to the model's square input, normalises pixel
// intensities to [0,1], runs the linear layer, and returns the maximum class
// confidence after softmax.
func (m *Model) Predict(ctx context.Context, img image.Image) (float64, error) {
	m.mu.RLock()
	weights := m.weights
	m.mu.RUnlock()
	if weights == nil {
		return 0, fmt.Errorf("model not loaded")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	features := poolPixels(img, weights.InputSize)

	logits := make([]float64, len(weights.Weights))
	for i, row := range weights.Weights {
		sum := weights.Bias[i]
		for j, w := range row {
			if j >= len(features) {
				break
			}
			sum += w * features[j]
		}
		logits[i] = sum
	}

	probs := softmax(logits)
	best := 0.0
	for _, p := range probs {
		if p > best {
			best = p
		}
	}
	return best, nil
}

func readModelFile(path string) (*modelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}
	if mf.InputSize <= 0 || len(mf.Classes) == 0 ||
		len(mf.Weights) != len(mf.Classes) || len(mf.Bias) != len(mf.Classes) {
		return nil, fmt.Errorf("malformed model file %s", path)
	}
	return &mf, nil
}

// poolPixels average-pools the image down to size x size and returns the
// flattened RGB grid with intensities normalised to [0,1].
func poolPixels(img image.Image, size int) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	features := make([]float64, size*size*3)
	for cy := 0; cy < size; cy++ {
		y0 := bounds.Min.Y + cy*h/size
		y1 := bounds.Min.Y + (cy+1)*h/size
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for cx := 0; cx < size; cx++ {
			x0 := bounds.Min.X + cx*w/size
			x1 := bounds.Min.X + (cx+1)*w/size
			if x1 <= x0 {
				x1 = x0 + 1
			}

			var rSum, gSum, bSum, n float64
			for y := y0; y < y1 && y < bounds.Max.Y; y++ {
				for x := x0; x < x1 && x < bounds.Max.X; x++ {
					r16, g16, b16, _ := img.At(x, y).RGBA()
					rSum += float64(r16 >> 8)
					gSum += float64(g16 >> 8)
					bSum += float64(b16 >> 8)
					n++
				}
			}
			if n == 0 {
				n = 1
			}

			base := (cy*size + cx) * 3
			features[base] = rSum / n / 255
			features[base+1] = gSum / n / 255
			features[base+2] = bSum / n / 255
		}
	}
	return features
}

func softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}

	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}

	var sum float64
	probs := make([]float64, len(logits))
	for i, l := range logits {
		probs[i] = math.Exp(l - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
