package driving

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then environment overrides.
	Get() (domain.Settings, error)

	// Save persists settings to the config file. Empty API keys are not written.
	Save(settings domain.Settings) error

	// SetEmbeddingProvider selects the default provider and stores its model
	// and API key.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// ValidateEmbeddingConfig checks that the default provider answers.
	ValidateEmbeddingConfig(ctx context.Context) error
}
