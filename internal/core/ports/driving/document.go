package driving

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// RegisterRequest describes a file to register as a document.
type RegisterRequest struct {
	OwnerID  string
	Name     string
	MIMEType string
	Data     []byte
}

// DocumentService manages uploaded documents.
type DocumentService interface {
	// Register stores the file and creates a document in UPLOADING status.
	Register(ctx context.Context, req RegisterRequest) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Chunks returns the chunks of a document ordered by position.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetDetails returns a document with its chunk and version counts.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Delete removes a document, its derived data and its stored file.
	Delete(ctx context.Context, documentID string) error
}

// DocumentDetails provides a summary view of a document.
type DocumentDetails struct {
	Document      domain.Document
	ChunkCount    int
	LatestVersion int
}
