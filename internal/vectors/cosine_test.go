package vectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-6)
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSort_TieBreakByPosition(t *testing.T) {
	results := []domain.SearchResult{
		{ChunkID: "c", Position: 2, Similarity: 0.5},
		{ChunkID: "b", Position: 1, Similarity: 0.9},
		{ChunkID: "a", Position: 0, Similarity: 0.5},
		{ChunkID: "d", Position: 3, Similarity: 0.9},
	}

	Sort(results)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ChunkID
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestSortByScore(t *testing.T) {
	results := []domain.SearchResult{
		{ChunkID: "a", Position: 0, Score: 0.2},
		{ChunkID: "b", Position: 1, Score: 1.1},
	}
	SortByScore(results)
	assert.Equal(t, "b", results[0].ChunkID)
}

func TestTopK(t *testing.T) {
	results := []domain.SearchResult{
		{ChunkID: "a", Similarity: 0.1},
		{ChunkID: "b", Similarity: 0.3},
		{ChunkID: "c", Similarity: 0.2},
	}

	got := TopK(results, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ChunkID)
	assert.Equal(t, "c", got[1].ChunkID)

	assert.Len(t, TopK(results, 0), 3)
}
