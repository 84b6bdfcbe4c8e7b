package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
)

type mockDocumentService struct {
	registered []driving.RegisterRequest
	deleted    []string
	err        error
}

func (m *mockDocumentService) Register(_ context.Context, req driving.RegisterRequest) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.registered = append(m.registered, req)
	return &domain.Document{
		ID:       "doc-new",
		Name:     req.Name,
		MIMEType: req.MIMEType,
		Size:     int64(len(req.Data)),
		Status:   domain.StatusUploading,
	}, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Document{
		{ID: "doc-1", Name: "report.pdf", Status: domain.StatusIndexed},
		{ID: "doc-2", Name: "broken.docx", Status: domain.StatusFailed, Error: "extraction failed"},
	}, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{ID: id, Name: "report.pdf", Status: domain.StatusIndexed}, nil
}

func (m *mockDocumentService) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Chunk{
		{ID: "c0", DocumentID: documentID, Position: 0, StartIndex: 0, EndIndex: 11, Content: "First chunk"},
		{ID: "c1", DocumentID: documentID, Position: 1, StartIndex: 8, EndIndex: 20, Content: "Second chunk"},
	}, nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &driving.DocumentDetails{
		Document: domain.Document{
			ID:        id,
			Name:      "report.pdf",
			MIMEType:  "application/pdf",
			Size:      2048,
			Status:    domain.StatusIndexed,
			CreatedAt: created,
			UpdatedAt: created,
		},
		ChunkCount:    12,
		LatestVersion: 2,
	}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockProcessor struct {
	calls  []string
	opts   []domain.ProcessOptions
	result *domain.ProcessingResult
}

func (m *mockProcessor) Process(_ context.Context, documentID string, opts domain.ProcessOptions) *domain.ProcessingResult {
	m.calls = append(m.calls, documentID)
	m.opts = append(m.opts, opts)
	if m.result != nil {
		return m.result
	}
	return &domain.ProcessingResult{DocumentID: documentID, Success: true, ChunkCount: 3, EmbeddingCount: 3}
}

type mockAssembler struct {
	lastDocID string
	lastQuery string
	lastOpts  domain.ContextOptions
	result    *domain.AssembledContext
	err       error
}

func (m *mockAssembler) Assemble(
	_ context.Context, documentID, query string, opts domain.ContextOptions,
) (*domain.AssembledContext, error) {
	m.lastDocID = documentID
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	chunk := domain.SearchResult{ChunkID: "c1", Content: "Revenue grew 12%.", Position: 4, Similarity: 0.91, Score: 0.91}
	return &domain.AssembledContext{
		Retrieval: &domain.RetrievalResult{
			Chunks:  []domain.SearchResult{chunk},
			Query:   query,
			Latency: 42 * time.Millisecond,
			Metadata: domain.RetrievalMetadata{
				TopK: 5, Model: "text-embedding-3-small", TotalResults: 1,
			},
		},
		Window: domain.ContextWindow{
			Chunks: []domain.SearchResult{chunk}, TotalTokens: 5, MaxTokens: 4000,
		},
		Formatted: "[Context 1] (Similarity: 91.0%)\nRevenue grew 12%.",
		Evidence:  []string{"Revenue grew 12%."},
	}, nil
}

type mockSettingsService struct {
	settings domain.Settings
	saved    *domain.Settings
	provider domain.AIProvider
	model    string
	apiKey   string
	err      error
	pingErr  error
}

func (m *mockSettingsService) Get() (domain.Settings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Save(settings domain.Settings) error {
	if m.err != nil {
		return m.err
	}
	m.saved = &settings
	m.settings = settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.err != nil {
		return m.err
	}
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error {
	return m.pingErr
}

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	documents *mockDocumentService
	processor *mockProcessor
	assembler *mockAssembler
	settings  *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup that
// restores the previous ones and resets every flag.
func setupTestServices() (*testServices, func()) {
	origDocs, origProc, origAsm, origSettings := documentService, processor, assembler, settingsService

	valid := domain.DefaultSettings()
	valid.Embedding.OpenAI.APIKey = "sk-test-1234567890"

	ts := &testServices{
		documents: &mockDocumentService{},
		processor: &mockProcessor{},
		assembler: &mockAssembler{},
		settings:  &mockSettingsService{settings: valid},
	}
	documentService = ts.documents
	processor = ts.processor
	assembler = ts.assembler
	settingsService = ts.settings

	return ts, func() {
		documentService, processor, assembler, settingsService = origDocs, origProc, origAsm, origSettings
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	}
}

// resetFlags restores flag defaults, since cobra keeps parsed values between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
