package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
	"github.com/custodia-labs/questioning-agent/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages uploaded documents and their stored files.
type DocumentService struct {
	docStore   driven.DocumentStore
	objects    driven.ObjectStore
	extractors driven.ExtractorRegistry
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	objects driven.ObjectStore,
	extractors driven.ExtractorRegistry,
) *DocumentService {
	return &DocumentService{
		docStore:   docStore,
		objects:    objects,
		extractors: extractors,
	}
}

// StorageKey returns the object store key for a document file.
func StorageKey(documentID, name string) string {
	return "documents/" + documentID + "/" + path.Base(strings.ReplaceAll(name, "\\", "/"))
}

// Register stores the file and creates a document in UPLOADING status.
func (s *DocumentService) Register(ctx context.Context, req driving.RegisterRequest) (*domain.Document, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: file %s is empty", domain.ErrInvalidInput, name)
	}
	if len(req.Data) > domain.MaxDocumentSize {
		return nil, fmt.Errorf("%w: file %s exceeds %d bytes", domain.ErrInvalidInput, name, domain.MaxDocumentSize)
	}
	if _, err := s.extractors.Get(req.MIMEType); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	doc := &domain.Document{
		ID:         id,
		OwnerID:    req.OwnerID,
		Name:       name,
		MIMEType:   req.MIMEType,
		Size:       int64(len(req.Data)),
		Status:     domain.StatusUploading,
		StorageKey: StorageKey(id, name),
	}

	if err := s.objects.Put(ctx, doc.StorageKey, req.Data); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		if derr := s.objects.Delete(ctx, doc.StorageKey); derr != nil {
			logger.Warn("Failed to remove orphaned file %s: %v", doc.StorageKey, derr)
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Registered document %s (%s, %d bytes)", id, name, doc.Size)
	return s.docStore.GetDocument(ctx, id)
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Chunks returns the chunks of a document ordered by position.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetChunks(ctx, documentID)
}

// GetDetails returns a document with its chunk count and latest version.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	details := &driving.DocumentDetails{Document: *doc, ChunkCount: len(chunks)}
	version, err := s.docStore.LatestVersion(ctx, documentID)
	switch {
	case err == nil:
		details.LatestVersion = version.Version
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get latest version: %w", err)
	}
	return details, nil
}

// Delete removes a document, its derived data and its stored file.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.objects.Delete(ctx, doc.StorageKey); err != nil {
		logger.Warn("Failed to delete file %s: %v", doc.StorageKey, err)
	}
	return nil
}
