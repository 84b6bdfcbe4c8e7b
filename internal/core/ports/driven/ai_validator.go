package driven

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// EmbeddingValidator validates embedding provider configurations.
// Implementations verify credentials by testing connectivity to the provider.
type EmbeddingValidator interface {
	// ValidateEmbedding returns nil if the provider answers with these settings.
	ValidateEmbedding(ctx context.Context, provider domain.AIProvider, settings domain.ProviderSettings) error
}
