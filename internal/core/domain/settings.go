package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGoogle is the Google Gemini API.
	AIProviderGoogle AIProvider = "google"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGoogle:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGoogle:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderGoogle,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGoogle: "text-embedding-004",
	}
}

// ProviderSettings holds the credentials and model for one embedding provider.
type ProviderSettings struct {
	// APIKey is the provider API key.
	APIKey string

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the API endpoint (OpenAI-compatible servers).
	BaseURL string

	// RequestsPerSecond caps the call rate. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the provider can be used.
func (p ProviderSettings) IsConfigured() bool {
	return p.APIKey != ""
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the default provider used when a request does not name one.
	Provider AIProvider

	// OpenAI holds OpenAI settings.
	OpenAI ProviderSettings

	// Google holds Google settings.
	Google ProviderSettings

	// BatchSize is the number of texts embedded concurrently per sub-batch.
	BatchSize int
}

// For returns the settings of the given provider.
func (e EmbeddingSettings) For(p AIProvider) ProviderSettings {
	switch p {
	case AIProviderOpenAI:
		return e.OpenAI
	case AIProviderGoogle:
		return e.Google
	default:
		return ProviderSettings{}
	}
}

// RerankWeights blends semantic similarity with keyword overlap during retrieval.
type RerankWeights struct {
	Semantic float64
	Keyword  float64
}

// RelevanceWeights blends similarity, keyword overlap and chunk position when
// ranking context chunks.
type RelevanceWeights struct {
	Semantic float64
	Keyword  float64
	Position float64
}

// RAGSettings holds chunking and retrieval defaults.
type RAGSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int

	// TopK is the default number of retrieval results.
	TopK int

	// SimilarityThreshold is the default minimum raw similarity.
	SimilarityThreshold float64

	// MaxContextTokens is the default context window budget.
	MaxContextTokens int

	// Rerank weights the keyword re-ranking composite.
	Rerank RerankWeights

	// Relevance weights context ranking.
	Relevance RelevanceWeights
}

// StorageSettings selects and configures the persistence backend.
type StorageSettings struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	// DataDir is the SQLite data directory and the object store root parent.
	DataDir string

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string
}

// ProcessingSettings configures the ingestion pipeline.
type ProcessingSettings struct {
	// StaleAfter is how long a PROCESSING document may sit untouched before a
	// new run is allowed to take it over.
	StaleAfter time.Duration
}

// Settings holds all application settings.
type Settings struct {
	Embedding  EmbeddingSettings
	RAG        RAGSettings
	Storage    StorageSettings
	Processing ProcessingSettings
}

// Storage driver names.
const (
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// DefaultSettings returns settings with the documented defaults.
func DefaultSettings() Settings {
	models := DefaultEmbeddingModels()
	return Settings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			OpenAI:    ProviderSettings{Model: models[AIProviderOpenAI]},
			Google:    ProviderSettings{Model: models[AIProviderGoogle]},
			BatchSize: 10,
		},
		RAG: RAGSettings{
			ChunkSize:           1000,
			ChunkOverlap:        200,
			TopK:                5,
			SimilarityThreshold: 0.7,
			MaxContextTokens:    4000,
			Rerank:              RerankWeights{Semantic: 0.7, Keyword: 0.3},
			Relevance:           RelevanceWeights{Semantic: 0.6, Keyword: 0.3, Position: 0.1},
		},
		Storage: StorageSettings{
			Driver: StorageDriverSQLite,
		},
		Processing: ProcessingSettings{
			StaleAfter: 30 * time.Minute,
		},
	}
}

// Validate reports every configuration problem in one error.
func (s Settings) Validate() error {
	var problems []string

	if !s.Embedding.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown embedding provider %q", s.Embedding.Provider))
	} else if !s.Embedding.For(s.Embedding.Provider).IsConfigured() {
		problems = append(problems, fmt.Sprintf("API key is required when using %s provider", s.Embedding.Provider))
	}
	if s.Embedding.BatchSize <= 0 {
		problems = append(problems, "embedding batch size must be positive")
	}
	if s.RAG.ChunkSize <= 0 {
		problems = append(problems, "chunk size must be positive")
	}
	if s.RAG.ChunkOverlap < 0 || s.RAG.ChunkOverlap >= s.RAG.ChunkSize {
		problems = append(problems, "chunk overlap must be non-negative and less than chunk size")
	}
	if s.RAG.TopK <= 0 {
		problems = append(problems, "topK must be positive")
	}
	if s.RAG.SimilarityThreshold < 0 || s.RAG.SimilarityThreshold > 1 {
		problems = append(problems, "similarity threshold must be within [0,1]")
	}
	if s.RAG.MaxContextTokens <= 0 {
		problems = append(problems, "max context tokens must be positive")
	}
	if s.RAG.Rerank.Semantic < 0 || s.RAG.Rerank.Keyword < 0 {
		problems = append(problems, "rerank weights must be non-negative")
	}
	r := s.RAG.Relevance
	if r.Semantic < 0 || r.Keyword < 0 || r.Position < 0 {
		problems = append(problems, "relevance weights must be non-negative")
	}
	switch s.Storage.Driver {
	case StorageDriverSQLite:
	case StorageDriverPostgres:
		if s.Storage.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage driver %q", s.Storage.Driver))
	}

	if len(problems) == 0 {
		return nil
	}
	return &ConfigError{Problems: problems}
}

// ConfigError lists configuration problems.
type ConfigError struct {
	Problems []string
}

// Error implements error.
func (e *ConfigError) Error() string {
	msg := "invalid configuration"
	for _, p := range e.Problems {
		msg += "; " + p
	}
	return msg
}

// Is reports whether target is ErrInvalidInput.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}
