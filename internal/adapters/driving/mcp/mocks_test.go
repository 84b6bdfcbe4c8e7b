package mcp

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
)

type mockProcessor struct {
	result   *domain.ProcessingResult
	lastID   string
	lastOpts domain.ProcessOptions
}

func (m *mockProcessor) Process(_ context.Context, documentID string, opts domain.ProcessOptions) *domain.ProcessingResult {
	m.lastID = documentID
	m.lastOpts = opts
	if m.result != nil {
		return m.result
	}
	return &domain.ProcessingResult{DocumentID: documentID, Success: true}
}

type mockAssembler struct {
	result    *domain.AssembledContext
	err       error
	lastQuery string
	lastOpts  domain.ContextOptions
}

func (m *mockAssembler) Assemble(
	_ context.Context, _, query string, opts domain.ContextOptions,
) (*domain.AssembledContext, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.AssembledContext{Retrieval: &domain.RetrievalResult{}}, nil
}

type mockDocumentService struct {
	documents []domain.Document
	chunks    []domain.Chunk
	err       error
}

func (m *mockDocumentService) Register(_ context.Context, _ driving.RegisterRequest) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func validPorts() *Ports {
	return &Ports{
		Processor: &mockProcessor{},
		Context:   &mockAssembler{},
	}
}
