package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// ProcessInput is the input schema for the process_document tool.
type ProcessInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of a registered document"`
	Provider   string `json:"provider,omitempty" jsonschema:"embedding provider: openai or google (default from settings)"`
}

// ProcessOutput is the output schema for the process_document tool.
type ProcessOutput struct {
	DocumentID     string `json:"document_id"`
	Success        bool   `json:"success"`
	ChunkCount     int    `json:"chunk_count"`
	EmbeddingCount int    `json:"embedding_count"`
	Error          string `json:"error,omitempty"`
}

// RetrieveInput is the input schema for the retrieve_context tool.
type RetrieveInput struct {
	DocumentID string   `json:"document_id" jsonschema:"id of an indexed document"`
	Query      string   `json:"query" jsonschema:"the question to find context for"`
	TopK       int      `json:"top_k,omitempty" jsonschema:"maximum number of chunks (default from settings)"`
	Threshold  *float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity between 0 and 1"`
	Provider   string   `json:"provider,omitempty" jsonschema:"embedding provider used to index the document"`
	Rerank     bool     `json:"rerank,omitempty" jsonschema:"blend keyword overlap into the ranking"`
	MaxTokens  int      `json:"max_tokens,omitempty" jsonschema:"token budget of the context window"`
	Merge      bool     `json:"merge,omitempty" jsonschema:"join chunks that are adjacent in the document"`
}

// RetrieveOutput is the output schema for the retrieve_context tool.
type RetrieveOutput struct {
	Context      string        `json:"context"`
	Chunks       []ChunkOutput `json:"chunks"`
	Evidence     []string      `json:"evidence"`
	WindowTokens int           `json:"window_tokens"`
	MaxTokens    int           `json:"max_tokens"`
	TotalResults int           `json:"total_results"`
	Model        string        `json:"model"`
	LatencyMs    int64         `json:"latency_ms"`
}

// ChunkOutput is one chunk of the context window.
type ChunkOutput struct {
	ID         string  `json:"id"`
	Position   int     `json:"position"`
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Extract, chunk, embed and index a registered document",
	}, s.handleProcess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Find the chunks of a document most relevant to a question and pack them into a context window",
	}, s.handleRetrieve)
}

func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	if input.DocumentID == "" {
		return nil, ProcessOutput{}, errors.New("document_id is required")
	}

	result := s.ports.Processor.Process(ctx, input.DocumentID, domain.ProcessOptions{
		Provider: domain.AIProvider(input.Provider),
	})

	return nil, ProcessOutput{
		DocumentID:     result.DocumentID,
		Success:        result.Success,
		ChunkCount:     result.ChunkCount,
		EmbeddingCount: result.EmbeddingCount,
		Error:          result.Error,
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	assembled, err := s.ports.Context.Assemble(ctx, input.DocumentID, input.Query, domain.ContextOptions{
		Retrieval: domain.RetrievalOptions{
			TopK:                input.TopK,
			SimilarityThreshold: input.Threshold,
			Provider:            domain.AIProvider(input.Provider),
			Rerank:              input.Rerank,
		},
		MaxTokens: input.MaxTokens,
		Merge:     input.Merge,
	})
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Context:      assembled.Formatted,
		Chunks:       make([]ChunkOutput, len(assembled.Window.Chunks)),
		Evidence:     assembled.Evidence,
		WindowTokens: assembled.Window.TotalTokens,
		MaxTokens:    assembled.Window.MaxTokens,
		TotalResults: assembled.Retrieval.Metadata.TotalResults,
		Model:        assembled.Retrieval.Metadata.Model,
		LatencyMs:    assembled.Retrieval.LatencyMs(),
	}
	if output.Evidence == nil {
		output.Evidence = []string{}
	}
	for i, c := range assembled.Window.Chunks {
		output.Chunks[i] = ChunkOutput{
			ID:         c.ChunkID,
			Position:   c.Position,
			Similarity: c.Similarity,
			Score:      c.Score,
			Content:    c.Content,
		}
	}
	return nil, output, nil
}
