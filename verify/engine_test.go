package verify

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, img image.Image) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestEngine_HeuristicVerifiesGreenPhoto(t *testing.T) {
	engine := NewEngine("", 5*time.Second)

	result, err := engine.Verify(context.Background(), pngBytes(t, solidImage(10, 10, color.RGBA{G: 200, A: 255})))
	require.NoError(t, err)

	assert.True(t, result.Verified)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
	assert.Equal(t, "Tree-like features detected (95.0%)", result.Message)
}

func TestEngine_HeuristicRejectsWhitePhoto(t *testing.T) {
	engine := NewEngine("", 5*time.Second)

	result, err := engine.Verify(context.Background(), pngBytes(t, solidImage(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})))
	require.NoError(t, err)

	assert.False(t, result.Verified)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, "Low confidence (0.0%)", result.Message)
}

func TestEngine_DecodeFailure(t *testing.T) {
	engine := NewEngine("", 5*time.Second)

	_, err := engine.Verify(context.Background(), strings.NewReader("not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding image")
}

func TestEngine_FallsBackWhileModelLoads(t *testing.T) {
	// A model path that will never load successfully: every submission must
	// independently fall back to the heuristic.
	engine := NewEngine("/nonexistent/model.json", 5*time.Second)

	result, err := engine.Verify(context.Background(), pngBytes(t, solidImage(10, 10, color.RGBA{G: 200, A: 255})))
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Contains(t, result.Message, "Tree-like features detected")
}

func TestEngine_VerifiedImpliesAboveThreshold(t *testing.T) {
	engine := NewEngine("", 5*time.Second)

	images := []color.RGBA{
		{G: 200, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 90, G: 130, B: 70, A: 255},
	}
	for _, c := range images {
		result, err := engine.Verify(context.Background(), pngBytes(t, solidImage(8, 8, c)))
		require.NoError(t, err)
		assert.Equal(t, result.Confidence > heuristicThreshold, result.Verified)
	}
}

func TestEngine_Timeout(t *testing.T) {
	engine := NewEngine("", time.Nanosecond)

	// Either the select observes the expired context or the strategy sees it
	// mid-scan; both surface as an error, nothing hangs.
	_, err := engine.Verify(context.Background(), pngBytes(t, solidImage(64, 64, color.RGBA{G: 200, A: 255})))
	require.Error(t, err)
}
