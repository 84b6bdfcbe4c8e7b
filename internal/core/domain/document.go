package domain

import "time"

// MaxDocumentSize is the largest file accepted for registration.
const MaxDocumentSize = 10 << 20

// DocumentStatus is the lifecycle state of an uploaded document.
type DocumentStatus string

// Document lifecycle states.
//
// The only forward path is UPLOADING -> PROCESSING -> INDEXED. Any step of a
// processing run may move the document to FAILED instead. Leaving INDEXED or
// FAILED requires an explicit reprocess request.
const (
	StatusUploading  DocumentStatus = "UPLOADING"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusIndexed    DocumentStatus = "INDEXED"
	StatusFailed     DocumentStatus = "FAILED"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusUploading, StatusProcessing, StatusIndexed, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for INDEXED and FAILED.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusIndexed || s == StatusFailed
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document identifies one uploaded source file.
// Chunks and embeddings belong to exactly one document and are destroyed with it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID references the user that uploaded the document.
	OwnerID string

	// Name is the original file name.
	Name string

	// MIMEType is the declared content type of the stored file.
	MIMEType string

	// Size is the stored file size in bytes.
	Size int64

	// Status is the lifecycle state.
	Status DocumentStatus

	// StorageKey locates the file content in the object store.
	StorageKey string

	// Error holds the message of the last failed processing run.
	Error string

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// DocumentVersion is an immutable snapshot of the text extracted by one
// processing run. Versions form an audit trail and are never updated.
type DocumentVersion struct {
	ID         string
	DocumentID string
	Version    int
	Content    string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// Chunk is a contiguous span of extracted text.
// Content is never mutated after creation; reprocessing replaces the whole set.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the zero-based ordinal within the document.
	Position int

	// StartIndex is the character offset where the chunk begins in the source text.
	StartIndex int

	// EndIndex is the character offset just past the end of the chunk.
	EndIndex int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// Embedding pairs a chunk with its vector for one embedding model.
// There is at most one embedding per (ChunkID, Model).
type Embedding struct {
	ChunkID  string
	Vector   []float32
	Model    string
	Provider AIProvider
}

// ProcessingResult is the outcome of one pipeline run.
type ProcessingResult struct {
	DocumentID     string `json:"documentId"`
	ChunkCount     int    `json:"chunkCount"`
	EmbeddingCount int    `json:"embeddingCount"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`

	// Err is the failure cause, for errors.Is checks by callers.
	Err error `json:"-"`
}

// ProcessOptions configures a single pipeline run.
type ProcessOptions struct {
	// Provider selects the embedding provider. Empty means the configured default.
	Provider AIProvider
}
