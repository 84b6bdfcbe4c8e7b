// Command qagent indexes documents and retrieves context for questions about them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/questioning-agent/internal/adapters/driven/ai"
	"github.com/custodia-labs/questioning-agent/internal/adapters/driven/config/file"
	"github.com/custodia-labs/questioning-agent/internal/adapters/driven/objectstore/filesystem"
	"github.com/custodia-labs/questioning-agent/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/questioning-agent/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/questioning-agent/internal/adapters/driving/cli"
	"github.com/custodia-labs/questioning-agent/internal/chunker"
	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
	"github.com/custodia-labs/questioning-agent/internal/core/services"
	"github.com/custodia-labs/questioning-agent/internal/extractors"
	"github.com/custodia-labs/questioning-agent/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}

// storage is the persistence backend selected by settings.
type storage interface {
	DocumentStore() driven.DocumentStore
	VectorIndex() driven.VectorIndex
	QueryLogStore() driven.QueryLogStore
	Close() error
}

// bootstrap wires the adapters into the services.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	logger.SetVerbose(opts.Verbose)

	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore).WithValidator(ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.DataDir != "" {
		settings.Storage.DataDir = opts.DataDir
	}
	logger.Debug("Config: %s, storage driver: %s", configStore.Path(), settings.Storage.Driver)

	store, err := openStorage(ctx, settings.Storage)
	if err != nil {
		return nil, nil, err
	}

	objects, err := filesystem.NewStore(settings.Storage.DataDir)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open file store: %w", err)
	}

	embedder, err := newEmbedder(ctx, settings.Embedding)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	var prompts driven.PromptStore
	if ps, err := file.NewPromptStore(promptDir); err != nil {
		logger.Warn("Prompt store unavailable, answer prompts disabled: %v", err)
	} else {
		prompts = ps
	}

	registry := extractors.NewDefaultRegistry()
	docs := store.DocumentStore()
	index := store.VectorIndex()

	pipeline := services.NewPipeline(
		docs, objects, registry, chunker.New(), embedder, index, settings.RAG, settings.Processing,
	)
	retrieval := services.NewRetrievalService(embedder, index, store.QueryLogStore(), settings.RAG)

	svc := &cli.Services{
		Documents: services.NewDocumentService(docs, objects, registry),
		Processor: pipeline,
		Context:   services.NewContextAssembler(retrieval, prompts, settings.RAG),
		Settings:  settingsService,
	}
	cleanup := func() error {
		return errors.Join(embedder.Close(), store.Close())
	}
	return svc, cleanup, nil
}

func openStorage(ctx context.Context, cfg domain.StorageSettings) (storage, error) {
	switch cfg.Driver {
	case domain.StorageDriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, nil
	case domain.StorageDriverSQLite, "":
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", domain.ErrInvalidInput, cfg.Driver)
	}
}

// newEmbedder registers every provider that has an API key.
func newEmbedder(ctx context.Context, cfg domain.EmbeddingSettings) (*services.Embedder, error) {
	embedder := services.NewEmbedder(cfg.Provider, cfg.BatchSize)

	for _, provider := range domain.AllEmbeddingProviders() {
		svc, err := ai.CreateEmbeddingService(ctx, provider, cfg.For(provider))
		if err != nil {
			embedder.Close()
			return nil, fmt.Errorf("%s embeddings: %w", provider, err)
		}
		if svc != nil {
			embedder.Register(provider, svc)
		}
	}

	if len(embedder.Providers()) == 0 {
		logger.Debug("No embedding provider configured; processing and queries will fail until one is set")
	}
	return embedder, nil
}
