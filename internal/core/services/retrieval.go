package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
	"github.com/custodia-labs/questioning-agent/internal/logger"
	"github.com/custodia-labs/questioning-agent/internal/vectors"
)

// Ensure RetrievalService implements the interface.
var _ driving.ContextRetriever = (*RetrievalService)(nil)

// overFetchFactor leaves the re-ranker room to reorder before truncation.
const overFetchFactor = 2

// RetrievalService answers queries against a document's vector index.
type RetrievalService struct {
	embedder *Embedder
	index    driven.VectorIndex
	queryLog driven.QueryLogStore
	rag      domain.RAGSettings
	now      func() time.Time
}

// NewRetrievalService creates a retrieval service.
// The queryLog parameter is optional (can be nil).
func NewRetrievalService(
	embedder *Embedder,
	index driven.VectorIndex,
	queryLog driven.QueryLogStore,
	rag domain.RAGSettings,
) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		queryLog: queryLog,
		rag:      rag,
		now:      time.Now,
	}
}

// Retrieve embeds the query, fetches twice topK candidates from the index,
// drops candidates below the similarity threshold, optionally re-ranks the
// rest by keyword overlap and returns the best topK.
// Any embedding or index failure is returned wrapped in ErrRetrievalFailed;
// partial results are never returned.
func (s *RetrievalService) Retrieve(
	ctx context.Context, documentID, query string, opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Document: %s, query: %q", documentID, query)

	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if opts.TopK < 0 {
		return nil, fmt.Errorf("%w: topK must not be negative", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK == 0 {
		topK = s.rag.TopK
	}
	threshold := s.rag.SimilarityThreshold
	if opts.SimilarityThreshold != nil {
		threshold = *opts.SimilarityThreshold
	}

	start := s.now()

	provider, _, err := s.embedder.Resolve(opts.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}
	model, err := s.embedder.Model(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}

	queryVector, err := s.embedder.Embed(ctx, query, provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}

	candidates, err := s.index.Search(ctx, driven.VectorQuery{
		DocumentID: documentID,
		Vector:     queryVector,
		TopK:       topK * overFetchFactor,
		Model:      model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %w", domain.ErrRetrievalFailed, err)
	}
	logger.Debug("Fetched %d candidates (limit %d)", len(candidates), topK*overFetchFactor)

	results := FilterByThreshold(candidates, threshold)
	logger.Debug("%d candidates at or above threshold %.2f", len(results), threshold)

	if opts.Rerank {
		results = Rerank(results, query, s.rag.Rerank)
	}
	if len(results) > topK {
		results = results[:topK]
	}

	latency := s.now().Sub(start)
	logger.Info("Retrieved %d chunks for document %s in %s", len(results), documentID, latency)

	s.logQuery(ctx, documentID, query, topK, results, latency)

	return &domain.RetrievalResult{
		Chunks:  results,
		Query:   query,
		Latency: latency,
		Metadata: domain.RetrievalMetadata{
			TopK:                topK,
			SimilarityThreshold: threshold,
			Provider:            provider,
			Model:               model,
			Reranked:            opts.Rerank,
			CandidateCount:      len(candidates),
			TotalResults:        len(results),
		},
	}, nil
}

// logQuery records the request. Failures are logged and otherwise ignored.
func (s *RetrievalService) logQuery(
	ctx context.Context, documentID, query string, topK int, results []domain.SearchResult, latency time.Duration,
) {
	if s.queryLog == nil {
		return
	}
	entry := &domain.QueryLog{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Query:      query,
		TopK:       topK,
		Results:    results,
		Latency:    latency,
		CreatedAt:  s.now(),
	}
	if err := s.queryLog.SaveQueryLog(ctx, entry); err != nil {
		logger.Warn("Failed to log query for document %s: %v", documentID, err)
	}
}

// FilterByThreshold keeps results whose raw similarity is at least threshold.
func FilterByThreshold(results []domain.SearchResult, threshold float64) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Similarity >= threshold {
			out = append(out, r)
		}
	}
	return out
}

// Rerank sets each result's Score to
// w.Semantic*similarity + w.Keyword*(occurrences/termCount) and sorts by it.
// The composite is not clamped and can exceed 1 when query terms repeat in
// the content; Similarity keeps the raw cosine value.
func Rerank(results []domain.SearchResult, query string, w domain.RerankWeights) []domain.SearchResult {
	terms := QueryTerms(query)
	out := make([]domain.SearchResult, len(results))
	for i, r := range results {
		r.Score = w.Semantic*r.Similarity + w.Keyword*KeywordScore(r.Content, terms)
		out[i] = r
	}
	vectors.SortByScore(out)
	return out
}
