package driving

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// ContextRetriever answers queries against an indexed document.
type ContextRetriever interface {
	// Retrieve returns the chunks of a document most relevant to query.
	Retrieve(ctx context.Context, documentID, query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, error)
}
