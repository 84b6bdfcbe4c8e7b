package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
	"github.com/custodia-labs/questioning-agent/internal/logger"
)

// Ensure ContextAssembler implements the interface.
var _ driving.ContextAssembler = (*ContextAssembler)(nil)

// ContextAssembler chains retrieval and the context window functions.
type ContextAssembler struct {
	retriever driving.ContextRetriever
	prompts   driven.PromptStore
	rag       domain.RAGSettings
}

// NewContextAssembler creates a context assembler.
// The prompts parameter is optional (can be nil); without it no prompt is rendered.
func NewContextAssembler(
	retriever driving.ContextRetriever,
	prompts driven.PromptStore,
	rag domain.RAGSettings,
) *ContextAssembler {
	return &ContextAssembler{
		retriever: retriever,
		prompts:   prompts,
		rag:       rag,
	}
}

// Assemble retrieves, optionally ranks and merges, then packs the window.
// The formatted context and evidence describe only the chunks in the window.
func (a *ContextAssembler) Assemble(
	ctx context.Context, documentID, query string, opts domain.ContextOptions,
) (*domain.AssembledContext, error) {
	if opts.MaxTokens < 0 {
		return nil, fmt.Errorf("%w: max tokens must not be negative", domain.ErrInvalidInput)
	}

	retrieval, err := a.retriever.Retrieve(ctx, documentID, query, opts.Retrieval)
	if err != nil {
		return nil, err
	}

	chunks := retrieval.Chunks
	if opts.Rank {
		chunks = RankByRelevance(chunks, query, a.rag.Relevance)
	}
	if opts.Merge {
		chunks = MergeAdjacent(chunks)
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = a.rag.MaxContextTokens
	}
	window := BuildWindow(chunks, maxTokens)
	logger.Debug("Context window: %d chunks, %d/%d tokens", len(window.Chunks), window.TotalTokens, window.MaxTokens)

	assembled := &domain.AssembledContext{
		Retrieval: retrieval,
		Window:    window,
		Formatted: FormatForPrompt(window.Chunks),
		Evidence:  ExtractEvidence(window.Chunks),
	}

	if opts.IncludePrompt && a.prompts != nil {
		template, err := a.prompts.Load(driven.PromptAnswer)
		if err != nil {
			return nil, fmt.Errorf("load answer prompt: %w", err)
		}
		assembled.Prompt = fmt.Sprintf(template, assembled.Formatted, query)
	}
	return assembled, nil
}
