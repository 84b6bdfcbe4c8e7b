package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// SaveQueryLog appends a query log entry.
func (s *Store) SaveQueryLog(_ context.Context, log *domain.QueryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := *log
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.queryLogs = append(s.queryLogs, entry)
	return nil
}

// ListQueryLogs returns the most recent entries for a document, newest first.
func (s *Store) ListQueryLogs(_ context.Context, documentID string, limit int) ([]domain.QueryLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QueryLog
	for i := len(s.queryLogs) - 1; i >= 0; i-- {
		if s.queryLogs[i].DocumentID != documentID {
			continue
		}
		out = append(out, s.queryLogs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
