package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/logger"
)

// DefaultEmbedBatchSize is the number of texts embedded concurrently per sub-batch.
const DefaultEmbedBatchSize = 10

// Embedder routes embedding requests to one of several providers.
// Batches are split into sub-batches that run one after another; the
// texts within a sub-batch are embedded concurrently.
type Embedder struct {
	mu              sync.RWMutex
	providers       map[domain.AIProvider]driven.EmbeddingService
	defaultProvider domain.AIProvider
	batchSize       int
}

// NewEmbedder creates an embedder with the given default provider.
// A non-positive batchSize selects DefaultEmbedBatchSize.
func NewEmbedder(defaultProvider domain.AIProvider, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &Embedder{
		providers:       make(map[domain.AIProvider]driven.EmbeddingService),
		defaultProvider: defaultProvider,
		batchSize:       batchSize,
	}
}

// Register makes a provider available.
func (e *Embedder) Register(provider domain.AIProvider, svc driven.EmbeddingService) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.providers[provider] = svc
}

// Providers returns the registered providers, sorted.
func (e *Embedder) Providers() []domain.AIProvider {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.AIProvider, 0, len(e.providers))
	for p := range e.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve returns the effective provider and its service.
// An empty provider selects the default.
func (e *Embedder) Resolve(provider domain.AIProvider) (domain.AIProvider, driven.EmbeddingService, error) {
	if provider == "" {
		provider = e.defaultProvider
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	svc, ok := e.providers[provider]
	if !ok {
		return provider, nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, provider)
	}
	return provider, svc, nil
}

// Model returns the model name used by a provider.
func (e *Embedder) Model(provider domain.AIProvider) (string, error) {
	_, svc, err := e.Resolve(provider)
	if err != nil {
		return "", err
	}
	return svc.ModelName(), nil
}

// Embed returns the embedding of a single text.
func (e *Embedder) Embed(ctx context.Context, text string, provider domain.AIProvider) ([]float32, error) {
	p, svc, err := e.Resolve(provider)
	if err != nil {
		return nil, err
	}
	vec, err := svc.Embed(ctx, text)
	if err != nil {
		return nil, providerError(p, err)
	}
	if len(vec) == 0 {
		return nil, providerError(p, errors.New("empty embedding"))
	}
	return vec, nil
}

// EmbedBatch returns one embedding per text, in input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string, provider domain.AIProvider) ([][]float32, error) {
	p, svc, err := e.Resolve(provider)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		logger.Debug("Embedding texts %d-%d of %d with %s", start+1, end, len(texts), p)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				vec, err := svc.Embed(gctx, texts[i])
				if err != nil {
					return err
				}
				if len(vec) == 0 {
					return fmt.Errorf("empty embedding for text %d", i)
				}
				out[i] = vec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, providerError(p, err)
		}
	}
	return out, nil
}

// Close releases every registered provider.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var errs []error
	for _, svc := range e.providers {
		errs = append(errs, svc.Close())
	}
	return errors.Join(errs...)
}

func providerError(p domain.AIProvider, err error) error {
	var embedErr *domain.EmbeddingError
	if errors.As(err, &embedErr) {
		return err
	}
	return &domain.EmbeddingError{Provider: p, Err: err}
}
