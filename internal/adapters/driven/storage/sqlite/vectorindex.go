package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/vectors"
)

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert stores an embedding, replacing any existing one for the same chunk and model.
func (v *vectorIndex) Upsert(ctx context.Context, e domain.Embedding) error {
	if len(e.Vector) == 0 {
		return fmt.Errorf("%w: empty vector for chunk %s", domain.ErrInvalidInput, e.ChunkID)
	}

	var exists int
	err := v.store.db.QueryRowContext(ctx, "SELECT 1 FROM chunks WHERE id = ?", e.ChunkID).Scan(&exists)
	if isNoRows(err) {
		return fmt.Errorf("upsert embedding for chunk %s: %w", e.ChunkID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking chunk: %w", err)
	}

	_, err = v.store.db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, model, provider, dimensions, vector)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id, model) DO UPDATE SET
			provider = excluded.provider,
			dimensions = excluded.dimensions,
			vector = excluded.vector
	`, e.ChunkID, e.Model, string(e.Provider), len(e.Vector), float32SliceToBytes(e.Vector))
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// Search ranks the embeddings of one document by cosine similarity.
func (v *vectorIndex) Search(ctx context.Context, q driven.VectorQuery) ([]domain.SearchResult, error) {
	rows, err := v.store.db.QueryContext(ctx, `
		SELECT c.id, c.content, c.position, c.metadata, e.vector
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		WHERE c.document_id = ? AND (? = '' OR e.model = ?)
	`, q.DocumentID, q.Model, q.Model)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.Position, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		sim, err := vectors.Cosine(q.Vector, bytesToFloat32Slice(blob))
		if err != nil {
			return nil, fmt.Errorf("search chunk %s: %w", r.ChunkID, err)
		}
		if r.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}
		r.Similarity = sim
		r.Score = sim
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	return vectors.TopK(results, q.TopK), nil
}

// Count returns the number of embeddings stored for a document.
func (v *vectorIndex) Count(ctx context.Context, documentID string) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM embeddings e JOIN chunks c ON c.id = e.chunk_id WHERE c.document_id = ?
	`, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return n, nil
}
