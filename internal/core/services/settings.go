package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedBatchSize    = "embedding.batch_size"
	keyOpenAIAPIKey      = "embedding.openai.api_key"
	keyOpenAIModel       = "embedding.openai.model"
	keyOpenAIBaseURL     = "embedding.openai.base_url"
	keyOpenAIRPS         = "embedding.openai.requests_per_second"
	keyGoogleAPIKey      = "embedding.google.api_key"
	keyGoogleModel       = "embedding.google.model"
	keyGoogleRPS         = "embedding.google.requests_per_second"
	keyChunkSize         = "rag.chunk_size"
	keyChunkOverlap      = "rag.chunk_overlap"
	keyTopK              = "rag.top_k"
	keyThreshold         = "rag.similarity_threshold"
	keyMaxContextTokens  = "rag.max_context_tokens"
	keyRerankSemantic    = "rag.rerank.semantic_weight"
	keyRerankKeyword     = "rag.rerank.keyword_weight"
	keyRelevanceSemantic = "rag.relevance.semantic_weight"
	keyRelevanceKeyword  = "rag.relevance.keyword_weight"
	keyRelevancePosition = "rag.relevance.position_weight"
	keyStorageDriver     = "storage.driver"
	keyStorageDataDir    = "storage.data_dir"
	keyDatabaseURL       = "storage.database_url"
	keyStaleAfter        = "processing.stale_after"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvAIProvider           = "AI_PROVIDER"
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvOpenAIEmbeddingModel = "OPENAI_EMBEDDING_MODEL"
	EnvGoogleAPIKey         = "GOOGLE_API_KEY"
	EnvGoogleEmbeddingModel = "GOOGLE_EMBEDDING_MODEL"
	EnvChunkSize            = "CHUNK_SIZE"
	EnvChunkOverlap         = "CHUNK_OVERLAP"
	EnvTopK                 = "TOP_K"
	EnvSimilarityThreshold  = "SIMILARITY_THRESHOLD"
	EnvDatabaseURL          = "DATABASE_URL"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading the process
// environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup. Useful for testing.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// WithValidator sets the validator used by ValidateEmbeddingConfig.
func (s *SettingsService) WithValidator(v driven.EmbeddingValidator) *SettingsService {
	s.validator = v
	return s
}

// Get retrieves current application settings.
// Malformed numeric environment values are reported as ErrInvalidInput.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider:  domain.AIProvider(s.getString(keyEmbedProvider, string(d.Embedding.Provider))),
			BatchSize: s.getInt(keyEmbedBatchSize, d.Embedding.BatchSize),
			OpenAI: domain.ProviderSettings{
				APIKey:            s.configStore.GetString(keyOpenAIAPIKey),
				Model:             s.getString(keyOpenAIModel, d.Embedding.OpenAI.Model),
				BaseURL:           s.configStore.GetString(keyOpenAIBaseURL), // Empty means the public API
				RequestsPerSecond: s.getFloat(keyOpenAIRPS, d.Embedding.OpenAI.RequestsPerSecond),
			},
			Google: domain.ProviderSettings{
				APIKey:            s.configStore.GetString(keyGoogleAPIKey),
				Model:             s.getString(keyGoogleModel, d.Embedding.Google.Model),
				RequestsPerSecond: s.getFloat(keyGoogleRPS, d.Embedding.Google.RequestsPerSecond),
			},
		},
		RAG: domain.RAGSettings{
			ChunkSize:           s.getInt(keyChunkSize, d.RAG.ChunkSize),
			ChunkOverlap:        s.getInt(keyChunkOverlap, d.RAG.ChunkOverlap),
			TopK:                s.getInt(keyTopK, d.RAG.TopK),
			SimilarityThreshold: s.getFloat(keyThreshold, d.RAG.SimilarityThreshold),
			MaxContextTokens:    s.getInt(keyMaxContextTokens, d.RAG.MaxContextTokens),
			Rerank: domain.RerankWeights{
				Semantic: s.getFloat(keyRerankSemantic, d.RAG.Rerank.Semantic),
				Keyword:  s.getFloat(keyRerankKeyword, d.RAG.Rerank.Keyword),
			},
			Relevance: domain.RelevanceWeights{
				Semantic: s.getFloat(keyRelevanceSemantic, d.RAG.Relevance.Semantic),
				Keyword:  s.getFloat(keyRelevanceKeyword, d.RAG.Relevance.Keyword),
				Position: s.getFloat(keyRelevancePosition, d.RAG.Relevance.Position),
			},
		},
		Storage: domain.StorageSettings{
			Driver:      s.getString(keyStorageDriver, d.Storage.Driver),
			DataDir:     s.configStore.GetString(keyStorageDataDir),
			DatabaseURL: s.configStore.GetString(keyDatabaseURL),
		},
		Processing: domain.ProcessingSettings{
			StaleAfter: d.Processing.StaleAfter,
		},
	}

	var problems []string
	if str := s.configStore.GetString(keyStaleAfter); str != "" {
		dur, err := time.ParseDuration(str)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", keyStaleAfter, err))
		} else {
			settings.Processing.StaleAfter = dur
		}
	}

	problems = append(problems, s.applyEnv(&settings)...)
	if len(problems) > 0 {
		return settings, &domain.ConfigError{Problems: problems}
	}
	return settings, nil
}

// applyEnv overlays environment variables and returns parse problems.
func (s *SettingsService) applyEnv(settings *domain.Settings) []string {
	var problems []string

	setString := func(name string, dst *string) {
		if v := s.getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := s.getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: %q is not an integer", name, v))
				return
			}
			*dst = n
		}
	}
	setFloat := func(name string, dst *float64) {
		if v := s.getenv(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: %q is not a number", name, v))
				return
			}
			*dst = f
		}
	}

	if v := s.getenv(EnvAIProvider); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	setString(EnvOpenAIAPIKey, &settings.Embedding.OpenAI.APIKey)
	setString(EnvOpenAIEmbeddingModel, &settings.Embedding.OpenAI.Model)
	setString(EnvGoogleAPIKey, &settings.Embedding.Google.APIKey)
	setString(EnvGoogleEmbeddingModel, &settings.Embedding.Google.Model)
	setInt(EnvChunkSize, &settings.RAG.ChunkSize)
	setInt(EnvChunkOverlap, &settings.RAG.ChunkOverlap)
	setInt(EnvTopK, &settings.RAG.TopK)
	setFloat(EnvSimilarityThreshold, &settings.RAG.SimilarityThreshold)
	if v := s.getenv(EnvDatabaseURL); v != "" {
		settings.Storage.DatabaseURL = v
		if s.configStore.GetString(keyStorageDriver) == "" {
			settings.Storage.Driver = domain.StorageDriverPostgres
		}
	}

	return problems
}

// Save persists application settings.
func (s *SettingsService) Save(settings domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyOpenAIModel, settings.Embedding.OpenAI.Model},
		{keyOpenAIBaseURL, settings.Embedding.OpenAI.BaseURL},
		{keyOpenAIRPS, settings.Embedding.OpenAI.RequestsPerSecond},
		{keyGoogleModel, settings.Embedding.Google.Model},
		{keyGoogleRPS, settings.Embedding.Google.RequestsPerSecond},
		{keyChunkSize, settings.RAG.ChunkSize},
		{keyChunkOverlap, settings.RAG.ChunkOverlap},
		{keyTopK, settings.RAG.TopK},
		{keyThreshold, settings.RAG.SimilarityThreshold},
		{keyMaxContextTokens, settings.RAG.MaxContextTokens},
		{keyRerankSemantic, settings.RAG.Rerank.Semantic},
		{keyRerankKeyword, settings.RAG.Rerank.Keyword},
		{keyRelevanceSemantic, settings.RAG.Relevance.Semantic},
		{keyRelevanceKeyword, settings.RAG.Relevance.Keyword},
		{keyRelevancePosition, settings.RAG.Relevance.Position},
		{keyStorageDriver, settings.Storage.Driver},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyStaleAfter, settings.Processing.StaleAfter.String()},
	}
	if settings.Embedding.OpenAI.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyOpenAIAPIKey, settings.Embedding.OpenAI.APIKey})
	}
	if settings.Embedding.Google.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyGoogleAPIKey, settings.Embedding.Google.APIKey})
	}
	if settings.Storage.DatabaseURL != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyDatabaseURL, settings.Storage.DatabaseURL})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider updates the default embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, provider)
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}

	modelKey, apiKeyKey := keyOpenAIModel, keyOpenAIAPIKey
	if provider == domain.AIProviderGoogle {
		modelKey, apiKeyKey = keyGoogleModel, keyGoogleAPIKey
	}
	if model != "" {
		if err := s.configStore.Set(modelKey, model); err != nil {
			return fmt.Errorf("save embedding model: %w", err)
		}
	}
	if apiKey != "" {
		if err := s.configStore.Set(apiKeyKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return s.configStore.Save()
}

// ValidateEmbeddingConfig pings the default embedding provider with the
// effective settings. Without a validator there is nothing to check.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	provider := settings.Embedding.Provider
	return s.validator.ValidateEmbedding(ctx, provider, settings.Embedding.For(provider))
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return defaultVal
}
