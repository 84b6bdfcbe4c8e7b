package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// DocumentStore persists documents, their versions and chunks.
// Backed by SQLite or Postgres.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document with its versions, chunks and embeddings.
	DeleteDocument(ctx context.Context, id string) error

	// BeginProcessing atomically moves a document to PROCESSING.
	// It returns false if another run holds the document and its last update
	// is newer than staleAfter.
	BeginProcessing(ctx context.Context, id string, staleAfter time.Duration) (bool, error)

	// UpdateStatus sets the status and error message of a document.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error

	// SaveVersion appends a version with the next version number and returns it.
	SaveVersion(ctx context.Context, documentID, content string, metadata map[string]any) (*domain.DocumentVersion, error)

	// LatestVersion returns the highest version of a document.
	// Returns domain.ErrNotFound if none exists.
	LatestVersion(ctx context.Context, documentID string) (*domain.DocumentVersion, error)

	// ReplaceChunks deletes every chunk of the document (and their embeddings)
	// and inserts chunks, in one transaction.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks returns the chunks of a document ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}
