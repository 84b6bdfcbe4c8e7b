// Package ai creates and validates embedding service adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/questioning-agent/internal/adapters/driven/embedding/google"
	"github.com/custodia-labs/questioning-agent/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 10 * time.Second

// CreateEmbeddingService creates the embedding service for provider.
// Returns nil if the provider has no API key.
func CreateEmbeddingService(
	ctx context.Context, provider domain.AIProvider, settings domain.ProviderSettings,
) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch provider {
	case domain.AIProviderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	case domain.AIProviderGoogle:
		return google.NewEmbeddingService(ctx, google.Config{
			APIKey:            settings.APIKey,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrInvalidInput, provider)
	}
}

// ValidateEmbeddingConfig creates the provider's service and pings it.
// This is intended for the settings wizard to check credentials on entry.
func ValidateEmbeddingConfig(ctx context.Context, provider domain.AIProvider, settings domain.ProviderSettings) error {
	if !settings.IsConfigured() {
		return fmt.Errorf("%w: %s API key is not set", domain.ErrProviderUnavailable, provider)
	}

	svc, err := CreateEmbeddingService(ctx, provider, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrProviderUnavailable, provider, err)
	}
	return nil
}
