package postgres

import (
	"context"
	"fmt"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/vectors"
)

// ==================== Vector Index ====================

type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert stores an embedding, replacing any existing one for the same chunk and model.
func (v *vectorIndex) Upsert(ctx context.Context, e domain.Embedding) error {
	literal, err := encodeVectorLiteral(e.Vector)
	if err != nil {
		return fmt.Errorf("%w: chunk %s: %w", domain.ErrInvalidInput, e.ChunkID, err)
	}

	_, err = v.store.db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, model, provider, vector, created_at)
		VALUES ($1, $2, $3, $4::vector, $5)
		ON CONFLICT (chunk_id, model) DO UPDATE SET
			provider = EXCLUDED.provider,
			vector = EXCLUDED.vector,
			created_at = EXCLUDED.created_at
	`, e.ChunkID, e.Model, string(e.Provider), literal, v.store.now().UTC())
	if isForeignKeyViolation(err) {
		return fmt.Errorf("upsert embedding for chunk %s: %w", e.ChunkID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// Search ranks the embeddings of one document with the pgvector cosine
// distance operator.
func (v *vectorIndex) Search(ctx context.Context, q driven.VectorQuery) ([]domain.SearchResult, error) {
	if q.TopK <= 0 {
		return []domain.SearchResult{}, nil
	}
	literal, err := encodeVectorLiteral(q.Vector)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrInvalidInput, err)
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT c.id, c.content, c.position, c.metadata, 1 - (e.vector <=> $1::vector) AS similarity
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		WHERE c.document_id = $2 AND ($3 = '' OR e.model = $3)
		ORDER BY e.vector <=> $1::vector, c.position
		LIMIT $4
	`, literal, q.DocumentID, q.Model, q.TopK)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var r domain.SearchResult
		var metadataJSON []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.Position, &metadataJSON, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		if r.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}
		r.Score = r.Similarity
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	// Float rounding in the database can reorder near ties.
	vectors.Sort(results)
	return results, nil
}

// Count returns the number of embeddings stored for a document.
func (v *vectorIndex) Count(ctx context.Context, documentID string) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM embeddings e JOIN chunks c ON c.id = e.chunk_id WHERE c.document_id = $1
	`, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return n, nil
}
