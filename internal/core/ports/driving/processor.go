package driving

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// DocumentProcessor runs the ingestion pipeline for a document.
type DocumentProcessor interface {
	// Process extracts, chunks, embeds and indexes a document.
	// Failures are reported in the result, never as an error.
	Process(ctx context.Context, documentID string, opts domain.ProcessOptions) *domain.ProcessingResult
}
