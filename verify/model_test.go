package verify

import (
	"context"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModelFile(t *testing.T, mf modelFile) string {
	t.Helper()

	raw, err := json.Marshal(mf)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tree-model.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

// testModel favors the "tree" class when the green channel dominates the
// pooled grid.
func testModel() modelFile {
	features := 2 * 2 * 3
	treeWeights := make([]float64, features)
	otherWeights := make([]float64, features)
	for i := 0; i < features; i += 3 {
		treeWeights[i+1] = 4  // green
		otherWeights[i] = 2   // red
		otherWeights[i+2] = 2 // blue
	}
	return modelFile{
		InputSize: 2,
		Classes:   []string{"tree", "not_tree"},
		Weights:   [][]float64{treeWeights, otherWeights},
		Bias:      []float64{0, 0},
	}
}

func loadedModel(t *testing.T, mf modelFile) *Model {
	t.Helper()

	m := NewModel(writeModelFile(t, mf))
	m.Load()
	require.Eventually(t, m.Ready, time.Second, 5*time.Millisecond)
	return m
}

func TestModel_PredictConfidenceRange(t *testing.T) {
	m := loadedModel(t, testModel())

	for _, c := range []color.RGBA{
		{G: 200, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 10, G: 30, B: 200, A: 255},
	} {
		confidence, err := m.Predict(context.Background(), solidImage(16, 16, c))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, confidence, 0.0)
		assert.LessOrEqual(t, confidence, 1.0)
	}
}

func TestModel_GreenImageVerifies(t *testing.T) {
	m := loadedModel(t, testModel())

	confidence, err := m.Predict(context.Background(), solidImage(16, 16, color.RGBA{G: 220, A: 255}))
	require.NoError(t, err)
	assert.Greater(t, confidence, m.Threshold())
}

func TestModel_LoadFailureSetsFallbackFlag(t *testing.T) {
	m := NewModel(filepath.Join(t.TempDir(), "missing.json"))
	m.Load()

	require.Eventually(t, m.Failed, time.Second, 5*time.Millisecond)
	assert.False(t, m.Ready())

	_, err := m.Predict(context.Background(), solidImage(4, 4, color.RGBA{G: 200, A: 255}))
	assert.Error(t, err)
}

func TestModel_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"input_size": 0}`), 0o600))

	m := NewModel(path)
	m.Load()
	require.Eventually(t, m.Failed, time.Second, 5*time.Millisecond)
}

func TestSoftmax_SumsToOne(t *testing.T) {
	probs := softmax([]float64{1.5, -0.2, 3.0})

	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
