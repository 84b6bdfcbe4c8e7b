package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// ==================== Document Store ====================

type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, owner_id, name, mime_type, size, status, storage_key, error, created_at, updated_at`

// SaveDocument stores or updates a document. created_at is kept on update.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	now := s.store.now().UTC()
	created := doc.CreatedAt
	if created.IsZero() {
		created = now
	}
	status := doc.Status
	if status == "" {
		status = domain.StatusUploading
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name,
			mime_type = EXCLUDED.mime_type,
			size = EXCLUDED.size,
			status = EXCLUDED.status,
			storage_key = EXCLUDED.storage_key,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`, doc.ID, doc.OwnerID, doc.Name, doc.MIMEType, doc.Size, string(status),
		doc.StorageKey, doc.Error, created, now)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

// ListDocuments returns all documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document; dependent rows cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireAffected(res)
}

// BeginProcessing moves a document to PROCESSING unless a fresh run holds it.
func (s *documentStore) BeginProcessing(ctx context.Context, id string, staleAfter time.Duration) (bool, error) {
	now := s.store.now().UTC()
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET status = $1, error = '', updated_at = $2
		WHERE id = $3 AND (status <> $1 OR updated_at <= $4)
	`, string(domain.StatusProcessing), now, id, now.Add(-staleAfter))
	if err != nil {
		return false, fmt.Errorf("claiming document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claiming document: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	var exists int
	err = s.store.db.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE id = $1", id).Scan(&exists)
	if isNoRows(err) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("claiming document: %w", err)
	}
	return false, nil
}

// UpdateStatus sets the status and error message of a document.
func (s *documentStore) UpdateStatus(
	ctx context.Context, id string, status domain.DocumentStatus, errMsg string,
) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET status = $1, error = $2, updated_at = $3 WHERE id = $4
	`, string(status), errMsg, s.store.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return requireAffected(res)
}

// SaveVersion appends the next version of a document's extracted text.
// The document row is locked so concurrent saves number consecutively.
func (s *documentStore) SaveVersion(
	ctx context.Context, documentID, content string, metadata map[string]any,
) (*domain.DocumentVersion, error) {
	metadataJSON, err := marshalJSON(metadata, "{}")
	if err != nil {
		return nil, err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := lockDocument(ctx, tx, documentID); err != nil {
		return nil, fmt.Errorf("save version: %w", err)
	}

	v := &domain.DocumentVersion{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  s.store.now().UTC(),
	}
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1 FROM document_versions WHERE document_id = $1
	`, documentID).Scan(&v.Version); err != nil {
		return nil, fmt.Errorf("next version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO document_versions (id, document_id, version, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, documentID, v.Version, content, metadataJSON, v.CreatedAt); err != nil {
		return nil, fmt.Errorf("saving version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing version: %w", err)
	}
	return v, nil
}

// LatestVersion returns the highest version of a document.
func (s *documentStore) LatestVersion(ctx context.Context, documentID string) (*domain.DocumentVersion, error) {
	var v domain.DocumentVersion
	var metadataJSON []byte
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, version, content, metadata, created_at
		FROM document_versions WHERE document_id = $1
		ORDER BY version DESC LIMIT 1
	`, documentID).Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content, &metadataJSON, &v.CreatedAt)
	if isNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning version: %w", err)
	}
	if v.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
		return nil, err
	}
	return &v, nil
}

// ReplaceChunks deletes the chunks of a document and inserts the new set in
// one transaction.
func (s *documentStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	seen := make(map[int]bool, len(chunks))
	for _, c := range chunks {
		if c.DocumentID != documentID {
			return fmt.Errorf("%w: chunk %s belongs to %s", domain.ErrInvalidInput, c.ID, c.DocumentID)
		}
		if seen[c.Position] {
			return fmt.Errorf("%w: duplicate chunk position %d", domain.ErrInvalidInput, c.Position)
		}
		seen[c.Position] = true
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := lockDocument(ctx, tx, documentID); err != nil {
		return fmt.Errorf("replace chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	for _, chunk := range chunks {
		metadataJSON, err := marshalJSON(chunk.Metadata, "{}")
		if err != nil {
			return err
		}
		id := chunk.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, content, position, start_index, end_index, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, documentID, chunk.Content, chunk.Position,
			chunk.StartIndex, chunk.EndIndex, metadataJSON); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, position, start_index, end_index, metadata
		FROM chunks WHERE document_id = $1
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		var chunk domain.Chunk
		var metadataJSON []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.Position,
			&chunk.StartIndex, &chunk.EndIndex, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if chunk.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Name, &doc.MIMEType, &doc.Size, &status,
		&doc.StorageKey, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func lockDocument(ctx context.Context, tx *sql.Tx, id string) error {
	var locked string
	err := tx.QueryRowContext(ctx, "SELECT id FROM documents WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	if isNoRows(err) {
		return domain.ErrNotFound
	}
	return err
}
