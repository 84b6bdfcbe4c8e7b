// Package memory provides in-memory storage adapters for tests and
// ephemeral runs.
package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.VectorIndex   = (*Store)(nil)
	_ driven.QueryLogStore = (*Store)(nil)
)

type embeddingKey struct {
	chunkID string
	model   string
}

// Store keeps documents, versions, chunks, embeddings and query logs in maps.
// Deleting a document or replacing its chunks removes dependent embeddings,
// mirroring the cascades of the SQL stores.
type Store struct {
	mu         sync.RWMutex
	documents  map[string]domain.Document
	versions   map[string][]domain.DocumentVersion
	chunks     map[string][]domain.Chunk
	chunkIndex map[string]domain.Chunk
	embeddings map[embeddingKey]domain.Embedding
	queryLogs  []domain.QueryLog

	// now is the clock; tests may replace it.
	now func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:  make(map[string]domain.Document),
		versions:   make(map[string][]domain.DocumentVersion),
		chunks:     make(map[string][]domain.Chunk),
		chunkIndex: make(map[string]domain.Chunk),
		embeddings: make(map[embeddingKey]domain.Embedding),
		now:        time.Now,
	}
}

// SetClock replaces the clock used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// removeChunksLocked drops every chunk of a document and their embeddings.
func (s *Store) removeChunksLocked(documentID string) {
	for _, c := range s.chunks[documentID] {
		delete(s.chunkIndex, c.ID)
		for key := range s.embeddings {
			if key.chunkID == c.ID {
				delete(s.embeddings, key)
			}
		}
	}
	delete(s.chunks, documentID)
}
