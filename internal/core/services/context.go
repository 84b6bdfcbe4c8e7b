package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/vectors"
)

// DefaultMaxContextTokens is the default context window budget.
const DefaultMaxContextTokens = 4000

const (
	contextSeparator  = "\n\n---\n\n"
	maxEvidenceLength = 200
)

// EstimateTokens approximates the token count of text as one token per
// four characters, rounded up.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / 4))
}

// BuildWindow accepts chunks in the given order while the running token
// total stays within maxTokens. It stops at the first chunk that does not
// fit; later, smaller chunks are not considered. This keeps the ranking
// order intact at the cost of leaving some budget unused.
// A non-positive maxTokens selects DefaultMaxContextTokens.
func BuildWindow(chunks []domain.SearchResult, maxTokens int) domain.ContextWindow {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}

	window := domain.ContextWindow{
		Chunks:    []domain.SearchResult{},
		MaxTokens: maxTokens,
	}
	for _, c := range chunks {
		tokens := EstimateTokens(c.Content)
		if window.TotalTokens+tokens > maxTokens {
			break
		}
		window.Chunks = append(window.Chunks, c)
		window.TotalTokens += tokens
	}
	return window
}

// MergeAdjacent joins runs of consecutive chunks whose positions differ by
// exactly one, in a single left-to-right pass. Merged content is joined with
// a blank line; the merged chunk keeps the first chunk's identity and
// position and takes the highest similarity and score of the run.
// Adjacency is measured against the last chunk merged so far, so 1,2,3
// becomes a single chunk rather than the pairwise 1+2 followed by 3.
func MergeAdjacent(chunks []domain.SearchResult) []domain.SearchResult {
	if len(chunks) <= 1 {
		return chunks
	}

	merged := make([]domain.SearchResult, 0, len(chunks))
	current := chunks[0]
	tail := current.Position

	for _, next := range chunks[1:] {
		if abs(next.Position-tail) == 1 {
			current.Content += "\n\n" + next.Content
			current.Similarity = max(current.Similarity, next.Similarity)
			current.Score = max(current.Score, next.Score)
			tail = next.Position
			continue
		}
		merged = append(merged, current)
		current = next
		tail = next.Position
	}
	return append(merged, current)
}

// FormatForPrompt renders ranked chunks as a single prompt-ready string.
// Each chunk is labelled with its rank and raw similarity percentage.
func FormatForPrompt(chunks []domain.SearchResult) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Context %d] (Similarity: %.1f%%)\n%s", i+1, c.Similarity*100, c.Content)
	}
	return strings.Join(parts, contextSeparator)
}

// RankByRelevance scores chunks by a weighted blend of similarity, keyword
// frequency and an early-position bonus of 1/(position+1), and sorts them by
// that score. Similarity is left untouched; the blend is stored in Score.
func RankByRelevance(chunks []domain.SearchResult, query string, w domain.RelevanceWeights) []domain.SearchResult {
	terms := QueryTerms(query)
	ranked := make([]domain.SearchResult, len(chunks))
	for i, c := range chunks {
		c.Score = w.Semantic*c.Similarity +
			w.Keyword*KeywordScore(c.Content, terms) +
			w.Position*(1/float64(c.Position+1))
		ranked[i] = c
	}
	vectors.SortByScore(ranked)
	return ranked
}

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// ExtractEvidence returns the first sentence of each chunk, truncated to 200
// characters with a trailing ellipsis.
func ExtractEvidence(chunks []domain.SearchResult) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		first := strings.TrimSpace(sentenceEnd.Split(c.Content, 2)[0])
		if first == "" {
			out[i] = truncateRunes(c.Content, maxEvidenceLength) + "..."
			continue
		}
		if utf8.RuneCountInString(first) > maxEvidenceLength {
			first = truncateRunes(first, maxEvidenceLength) + "..."
		}
		out[i] = first
	}
	return out
}

// QueryTerms lowercases a query and splits it on whitespace.
func QueryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// KeywordScore returns the total number of case-insensitive occurrences of
// terms in content divided by the number of terms.
func KeywordScore(content string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	occurrences := 0
	for _, t := range terms {
		occurrences += strings.Count(lower, t)
	}
	return float64(occurrences) / float64(len(terms))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
