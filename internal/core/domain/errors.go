package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor handles the declared MIME type.
	// Not retried; callers surface it as a client error.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates a format parser failed on the file content.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmptyContent indicates extraction or chunking produced nothing usable.
	// Kept distinct from ErrExtractionFailed for diagnostics.
	ErrEmptyContent = errors.New("empty content")

	// ErrEmbeddingProvider indicates an embedding provider call failed.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrRetrievalFailed indicates query-time embedding or index search failed.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrProcessingInProgress indicates another run holds the document.
	ErrProcessingInProgress = errors.New("document is already being processed")

	// ErrProviderUnavailable indicates the requested embedding provider is not configured.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
)

// ExtractionError wraps a format parser failure.
// It matches ErrExtractionFailed and unwraps to the parser error.
type ExtractionError struct {
	MIMEType string
	Err      error
}

// Error implements error.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.MIMEType, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExtractionFailed.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// EmbeddingError wraps a provider API failure with the provider name.
// It matches ErrEmbeddingProvider and unwraps to the API error.
type EmbeddingError struct {
	Provider AIProvider
	Err      error
}

// Error implements error.
func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("failed to generate embedding with %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEmbeddingProvider.
func (e *EmbeddingError) Is(target error) bool {
	return target == ErrEmbeddingProvider
}
