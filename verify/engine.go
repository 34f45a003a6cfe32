package verify

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"
)

// Engine decides whether a tree photo counts as verified. It prefers the
// model strategy whenever the asynchronous load has settled successfully;
// every other submission independently falls back to the heuristic. The
// whole decode+predict is bounded by the configured timeout so a stalled
// decode fails the submission instead of hanging it.
type Engine struct {
	model     *Model
	heuristic *Heuristic
	timeout   time.Duration
}

// NewEngine builds a verification engine. modelPath may be empty, in which
// case only the heuristic runs. The model load is kicked off here and
// completes in the background.
func NewEngine(modelPath string, timeout time.Duration) *Engine {
	e := &Engine{
		heuristic: NewHeuristic(),
		timeout:   timeout,
	}
	if modelPath != "" {
		e.model = NewModel(modelPath)
		e.model.Load()
	}
	return e
}

// Verify decodes the image and scores it with the active strategy. A decode
// or inference failure returns an error and the caller persists nothing.
func (e *Engine) Verify(ctx context.Context, r io.Reader) (Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := e.verify(ctx, r)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("verification timed out: %w", ctx.Err())
	case out := <-done:
		return out.result, out.err
	}
}

func (e *Engine) verify(ctx context.Context, r io.Reader) (Result, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Result{}, fmt.Errorf("decoding image: %w", err)
	}

	strategy := e.strategy()
	confidence, err := strategy.Predict(ctx, img)
	if err != nil {
		return Result{}, fmt.Errorf("%s prediction: %w", strategy.Name(), err)
	}

	verified := confidence > strategy.Threshold()
	return Result{
		Verified:   verified,
		Confidence: confidence,
		Message:    message(strategy, verified, confidence),
	}, nil
}

// strategy picks the model only when its load has already settled
// successfully. Submissions racing the load each fall back on their own.
func (e *Engine) strategy() Strategy {
	if e.model != nil && e.model.Ready() {
		return e.model
	}
	return e.heuristic
}

func message(s Strategy, verified bool, confidence float64) string {
	pct := confidence * 100
	if s.Name() == "model" {
		if verified {
			return fmt.Sprintf("Tree detected (%.1f%%)", pct)
		}
		return fmt.Sprintf("No tree detected (%.1f%%)", pct)
	}
	if verified {
		return fmt.Sprintf("Tree-like features detected (%.1f%%)", pct)
	}
	return fmt.Sprintf("Low confidence (%.1f%%)", pct)
}
