package driven

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// QueryLogStore records retrieval requests.
type QueryLogStore interface {
	// SaveQueryLog appends a query log entry.
	SaveQueryLog(ctx context.Context, log *domain.QueryLog) error

	// ListQueryLogs returns the most recent entries for a document, newest first.
	ListQueryLogs(ctx context.Context, documentID string, limit int) ([]domain.QueryLog, error)
}
