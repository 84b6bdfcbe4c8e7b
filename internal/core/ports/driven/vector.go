package driven

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// VectorQuery is a similarity query scoped to one document and model.
type VectorQuery struct {
	DocumentID string
	Vector     []float32
	TopK       int

	// Model restricts the search to embeddings produced by this model.
	Model string
}

// VectorIndex stores embeddings and answers nearest-neighbour queries.
type VectorIndex interface {
	// Upsert stores an embedding, replacing any existing one for the same
	// chunk and model.
	Upsert(ctx context.Context, e domain.Embedding) error

	// Search returns at most TopK chunks of the document ordered by cosine
	// similarity descending, ties broken by position ascending.
	// Similarity is reported as 1 - cosine distance. Score equals Similarity.
	Search(ctx context.Context, q VectorQuery) ([]domain.SearchResult, error)

	// Count returns the number of embeddings stored for a document.
	Count(ctx context.Context, documentID string) (int, error)
}
