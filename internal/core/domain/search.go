package domain

import "time"

// SearchResult is one retrieved chunk. It lives for a single request only.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string `json:"id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Position is the chunk ordinal within its document.
	Position int `json:"position"`

	// Metadata carries the chunk metadata (offsets and the like).
	Metadata map[string]any `json:"metadata,omitempty"`

	// Similarity is the raw cosine similarity (1 - cosine distance).
	Similarity float64 `json:"similarity"`

	// Score is the ranking score. It equals Similarity unless the result was
	// re-ranked, in which case it is the blended composite. Composite scores
	// are not clamped and may exceed 1.
	Score float64 `json:"score"`
}

// RetrievalOptions configures a retrieval request.
type RetrievalOptions struct {
	// TopK is the number of results to return. Zero means the configured default.
	TopK int

	// SimilarityThreshold drops candidates whose raw similarity is below it.
	// Nil means the configured default.
	SimilarityThreshold *float64

	// Provider selects the embedding provider. Empty means the configured default.
	Provider AIProvider

	// Rerank enables keyword re-ranking of the surviving candidates.
	Rerank bool
}

// Threshold returns a pointer to v, for use in RetrievalOptions.
func Threshold(v float64) *float64 {
	return &v
}

// RetrievalMetadata describes how a retrieval result was produced.
type RetrievalMetadata struct {
	TopK                int        `json:"topK"`
	SimilarityThreshold float64    `json:"similarityThreshold"`
	Provider            AIProvider `json:"provider"`
	Model               string     `json:"model"`
	Reranked            bool       `json:"reranked"`
	CandidateCount      int        `json:"candidateCount"`
	TotalResults        int        `json:"totalResults"`
}

// RetrievalResult is the ranked output of a retrieval request.
type RetrievalResult struct {
	Chunks   []SearchResult    `json:"chunks"`
	Query    string            `json:"query"`
	Latency  time.Duration     `json:"-"`
	Metadata RetrievalMetadata `json:"metadata"`
}

// LatencyMs returns the latency in whole milliseconds.
func (r *RetrievalResult) LatencyMs() int64 {
	return r.Latency.Milliseconds()
}

// ContextWindow is the token-bounded subset of ranked results handed to generation.
type ContextWindow struct {
	Chunks      []SearchResult `json:"chunks"`
	TotalTokens int            `json:"totalTokens"`
	MaxTokens   int            `json:"maxTokens"`
}

// QueryLog is the audit record of one retrieval request.
type QueryLog struct {
	ID         string
	DocumentID string
	Query      string
	TopK       int
	Results    []SearchResult
	Latency    time.Duration
	CreatedAt  time.Time
}

// ContextOptions configures assembly of a prompt-ready context for a question.
type ContextOptions struct {
	// Retrieval configures the underlying retrieval request.
	Retrieval RetrievalOptions

	// MaxTokens bounds the context window. Zero means the configured default.
	MaxTokens int

	// Merge joins chunks with consecutive positions before packing the window.
	Merge bool

	// Rank re-orders retrieved chunks by the relevance blend before packing.
	Rank bool

	// IncludePrompt renders the answer prompt around the formatted context.
	IncludePrompt bool
}

// AssembledContext is a retrieval result reduced to what a generator consumes.
type AssembledContext struct {
	Retrieval *RetrievalResult `json:"retrieval"`
	Window    ContextWindow    `json:"window"`
	Formatted string           `json:"formatted"`
	Evidence  []string         `json:"evidence"`
	Prompt    string           `json:"prompt,omitempty"`
}
