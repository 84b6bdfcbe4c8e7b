package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
	"github.com/custodia-labs/questioning-agent/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.DocumentProcessor = (*Pipeline)(nil)

// Pipeline turns a stored document into indexed chunks:
// extract, version, chunk, embed, index.
type Pipeline struct {
	docs       driven.DocumentStore
	objects    driven.ObjectStore
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   *Embedder
	index      driven.VectorIndex
	rag        domain.RAGSettings
	processing domain.ProcessingSettings
}

// NewPipeline creates a document processing pipeline.
func NewPipeline(
	docs driven.DocumentStore,
	objects driven.ObjectStore,
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder *Embedder,
	index driven.VectorIndex,
	rag domain.RAGSettings,
	processing domain.ProcessingSettings,
) *Pipeline {
	if processing.StaleAfter <= 0 {
		processing.StaleAfter = domain.DefaultSettings().Processing.StaleAfter
	}
	return &Pipeline{
		docs:       docs,
		objects:    objects,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		rag:        rag,
		processing: processing,
	}
}

// Process runs the pipeline for one document and always returns a result.
//
// The run starts by claiming the document (UPLOADING, INDEXED or FAILED to
// PROCESSING). A document already PROCESSING is only claimed once its last
// update is older than the configured stale period; otherwise the result
// carries ErrProcessingInProgress and the document is left alone.
// Any later failure moves the document to FAILED with the error message and
// reports zero chunks and embeddings. Chunks stored by an earlier successful
// run stay in place when the failure happens before they are replaced.
func (p *Pipeline) Process(
	ctx context.Context, documentID string, opts domain.ProcessOptions,
) *domain.ProcessingResult {
	logger.Section("Processing " + documentID)
	result := &domain.ProcessingResult{DocumentID: documentID}

	claimed, err := p.docs.BeginProcessing(ctx, documentID, p.processing.StaleAfter)
	if err != nil {
		return fail(result, fmt.Errorf("mark processing: %w", err))
	}
	if !claimed {
		logger.Warn("Document %s is already being processed", documentID)
		return fail(result, domain.ErrProcessingInProgress)
	}

	if err := p.run(ctx, documentID, opts, result); err != nil {
		logger.Error("Processing document %s failed: %v", documentID, err)
		if uerr := p.docs.UpdateStatus(context.WithoutCancel(ctx), documentID, domain.StatusFailed, err.Error()); uerr != nil {
			logger.Error("Failed to mark document %s as failed: %v", documentID, uerr)
		}
		return fail(result, err)
	}

	result.Success = true
	logger.Info("Document %s indexed: %d chunks, %d embeddings", documentID, result.ChunkCount, result.EmbeddingCount)
	return result
}

func fail(result *domain.ProcessingResult, err error) *domain.ProcessingResult {
	result.Success = false
	result.ChunkCount = 0
	result.EmbeddingCount = 0
	result.Err = err
	result.Error = err.Error()
	return result
}

// run executes the steps after the document was claimed.
func (p *Pipeline) run(
	ctx context.Context, documentID string, opts domain.ProcessOptions, result *domain.ProcessingResult,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during processing: %v", r)
		}
	}()

	doc, err := p.docs.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	data, err := p.objects.Get(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("fetch file: %w", err)
	}

	done := logger.Timed("extract")
	text, err := p.extractors.Extract(ctx, data, doc.MIMEType)
	done()
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: no text extracted from %s", domain.ErrEmptyContent, doc.Name)
	}

	version, err := p.docs.SaveVersion(ctx, documentID, text, map[string]any{
		"mimeType":   doc.MIMEType,
		"characters": utf8.RuneCountInString(text),
		"source":     doc.StorageKey,
	})
	if err != nil {
		return fmt.Errorf("save version: %w", err)
	}
	logger.Debug("Saved version %d (%d characters)", version.Version, utf8.RuneCountInString(text))

	pieces, err := p.chunker.Chunk(text, driven.ChunkOptions{
		ChunkSize:    p.rag.ChunkSize,
		ChunkOverlap: p.rag.ChunkOverlap,
	})
	if err != nil {
		return fmt.Errorf("chunk text: %w", err)
	}
	if len(pieces) == 0 {
		return fmt.Errorf("%w: chunking produced no chunks", domain.ErrEmptyContent)
	}

	if err := p.docs.ReplaceChunks(ctx, documentID, bindChunks(documentID, pieces)); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	chunks, err := p.docs.GetChunks(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}
	result.ChunkCount = len(chunks)
	logger.Debug("Stored %d chunks", len(chunks))

	provider, _, err := p.embedder.Resolve(opts.Provider)
	if err != nil {
		return err
	}
	model, err := p.embedder.Model(provider)
	if err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	done = logger.Timed("embed chunks")
	vecs, err := p.embedder.EmbedBatch(ctx, texts, provider)
	done()
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	for i, c := range chunks {
		if err := p.index.Upsert(ctx, domain.Embedding{
			ChunkID:  c.ID,
			Vector:   vecs[i],
			Model:    model,
			Provider: provider,
		}); err != nil {
			return fmt.Errorf("store embedding for chunk %d: %w", c.Position, err)
		}
		result.EmbeddingCount++
	}

	if err := p.docs.UpdateStatus(ctx, documentID, domain.StatusIndexed, ""); err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}
	return nil
}

// bindChunks assigns ids and the parent document to chunker output.
func bindChunks(documentID string, pieces []driven.TextChunk) []domain.Chunk {
	chunks := make([]domain.Chunk, len(pieces))
	for i, c := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    c.Content,
			Position:   c.Position,
			StartIndex: c.StartIndex,
			EndIndex:   c.EndIndex,
			Metadata: map[string]any{
				"startIndex": c.StartIndex,
				"endIndex":   c.EndIndex,
			},
		}
	}
	return chunks
}
