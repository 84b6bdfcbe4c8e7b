package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	d := *doc
	if existing, ok := s.documents[d.ID]; ok {
		d.CreatedAt = existing.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	s.documents[d.ID] = d
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, d := range s.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// DeleteDocument removes a document and everything derived from it.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	s.removeChunksLocked(id)
	delete(s.versions, id)
	delete(s.documents, id)
	return nil
}

// BeginProcessing moves a document to PROCESSING unless a fresh run holds it.
func (s *Store) BeginProcessing(_ context.Context, id string, staleAfter time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	now := s.now()
	if doc.Status == domain.StatusProcessing && now.Sub(doc.UpdatedAt) < staleAfter {
		return false, nil
	}
	doc.Status = domain.StatusProcessing
	doc.Error = ""
	doc.UpdatedAt = now
	s.documents[id] = doc
	return true, nil
}

// UpdateStatus sets the status and error message of a document.
func (s *Store) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.Error = errMsg
	doc.UpdatedAt = s.now()
	s.documents[id] = doc
	return nil
}

// SaveVersion appends the next version of a document's extracted text.
func (s *Store) SaveVersion(
	_ context.Context, documentID, content string, metadata map[string]any,
) (*domain.DocumentVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return nil, fmt.Errorf("save version: %w", domain.ErrNotFound)
	}
	v := domain.DocumentVersion{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Version:    len(s.versions[documentID]) + 1,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  s.now(),
	}
	s.versions[documentID] = append(s.versions[documentID], v)
	return &v, nil
}

// LatestVersion returns the highest version of a document.
func (s *Store) LatestVersion(_ context.Context, documentID string) (*domain.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.versions[documentID]
	if len(versions) == 0 {
		return nil, domain.ErrNotFound
	}
	v := versions[len(versions)-1]
	return &v, nil
}

// ReplaceChunks swaps the chunk set of a document.
func (s *Store) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return fmt.Errorf("replace chunks: %w", domain.ErrNotFound)
	}

	seen := make(map[int]bool, len(chunks))
	for _, c := range chunks {
		if c.DocumentID != documentID {
			return fmt.Errorf("%w: chunk %s belongs to %s", domain.ErrInvalidInput, c.ID, c.DocumentID)
		}
		if seen[c.Position] {
			return fmt.Errorf("%w: duplicate chunk position %d", domain.ErrInvalidInput, c.Position)
		}
		seen[c.Position] = true
	}

	s.removeChunksLocked(documentID)
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	for i := range stored {
		if stored[i].ID == "" {
			stored[i].ID = uuid.New().String()
		}
		s.chunkIndex[stored[i].ID] = stored[i]
	}
	s.chunks[documentID] = stored
	return nil
}

// GetChunks returns the chunks of a document ordered by position.
func (s *Store) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := make([]domain.Chunk, len(s.chunks[documentID]))
	copy(chunks, s.chunks[documentID])
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Position < chunks[j].Position })
	return chunks, nil
}
