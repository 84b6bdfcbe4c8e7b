package driving

import (
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// ContextAssembler turns a question into a token-bounded, prompt-ready context.
type ContextAssembler interface {
	// Assemble retrieves chunks for query and packs them into a context window.
	Assemble(ctx context.Context, documentID, query string, opts domain.ContextOptions) (*domain.AssembledContext, error)
}
