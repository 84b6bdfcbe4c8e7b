// Package vectors provides cosine similarity and deterministic result ordering
// shared by the brute-force vector index adapters.
package vectors

import (
	"errors"
	"math"
	"sort"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b, i.e. 1 - cosine distance.
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Sort orders results by similarity descending, ties by position ascending.
func Sort(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Position < results[j].Position
	})
}

// SortByScore orders results by score descending, ties by position ascending.
func SortByScore(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Position < results[j].Position
	})
}

// TopK sorts results and truncates them to k. k <= 0 keeps everything.
func TopK(results []domain.SearchResult, k int) []domain.SearchResult {
	Sort(results)
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
