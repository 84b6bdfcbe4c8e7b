package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// ==================== Query Log Store ====================

// queryLogStore implements driven.QueryLogStore.
type queryLogStore struct {
	store *Store
}

var _ driven.QueryLogStore = (*queryLogStore)(nil)

// SaveQueryLog records one retrieval request.
func (q *queryLogStore) SaveQueryLog(ctx context.Context, log *domain.QueryLog) error {
	results := log.Results
	if results == nil {
		results = []domain.SearchResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}
	id := log.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := log.CreatedAt
	if created.IsZero() {
		created = q.store.now()
	}

	_, err = q.store.db.ExecContext(ctx, `
		INSERT INTO query_logs (id, document_id, query, top_k, results, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, log.DocumentID, log.Query, log.TopK, string(resultsJSON),
		log.Latency.Milliseconds(), toMillis(created))
	if err != nil {
		return fmt.Errorf("saving query log: %w", err)
	}
	return nil
}

// ListQueryLogs returns the most recent entries for a document, newest first.
// A non-positive limit returns every entry.
func (q *queryLogStore) ListQueryLogs(ctx context.Context, documentID string, limit int) ([]domain.QueryLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.store.db.QueryContext(ctx, `
		SELECT id, document_id, query, top_k, results, latency_ms, created_at
		FROM query_logs WHERE document_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying query logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.QueryLog
	for rows.Next() {
		var l domain.QueryLog
		var resultsJSON string
		var latencyMs, created int64
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Query, &l.TopK, &resultsJSON, &latencyMs, &created); err != nil {
			return nil, fmt.Errorf("scanning query log: %w", err)
		}
		if err := json.Unmarshal([]byte(resultsJSON), &l.Results); err != nil {
			return nil, fmt.Errorf("unmarshalling results: %w", err)
		}
		l.Latency = time.Duration(latencyMs) * time.Millisecond
		l.CreatedAt = fromMillis(created)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query logs: %w", err)
	}
	return logs, nil
}
