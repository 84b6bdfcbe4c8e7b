package memory

import (
	"context"
	"fmt"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/vectors"
)

// Upsert stores an embedding, replacing any existing one for the same chunk and model.
func (s *Store) Upsert(_ context.Context, e domain.Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunkIndex[e.ChunkID]; !ok {
		return fmt.Errorf("upsert embedding for chunk %s: %w", e.ChunkID, domain.ErrNotFound)
	}
	v := make([]float32, len(e.Vector))
	copy(v, e.Vector)
	e.Vector = v
	s.embeddings[embeddingKey{chunkID: e.ChunkID, model: e.Model}] = e
	return nil
}

// Search scans every embedding of the document and ranks by cosine similarity.
func (s *Store) Search(_ context.Context, q driven.VectorQuery) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.SearchResult
	for _, c := range s.chunks[q.DocumentID] {
		for key, e := range s.embeddings {
			if key.chunkID != c.ID || (q.Model != "" && key.model != q.Model) {
				continue
			}
			sim, err := vectors.Cosine(q.Vector, e.Vector)
			if err != nil {
				return nil, fmt.Errorf("search chunk %s: %w", c.ID, err)
			}
			results = append(results, domain.SearchResult{
				ChunkID:    c.ID,
				Content:    c.Content,
				Position:   c.Position,
				Metadata:   c.Metadata,
				Similarity: sim,
				Score:      sim,
			})
		}
	}
	return vectors.TopK(results, q.TopK), nil
}

// Count returns the number of embeddings stored for a document.
func (s *Store) Count(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.chunks[documentID] {
		for key := range s.embeddings {
			if key.chunkID == c.ID {
				n++
			}
		}
	}
	return n, nil
}
