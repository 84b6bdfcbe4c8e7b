package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure embedding providers, chunking and retrieval defaults,
and storage.

Environment variables (OPENAI_API_KEY, AI_PROVIDER, DATABASE_URL, ...) override
the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Interactively select the default embedding provider, its model and API key.`,
	RunE:  runSettingsEmbedding,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set one setting and save the config file. Keys:
` + settingKeyList(),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

// settingsInput is where the wizard reads answers from.
var settingsInput io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Batch size: %d\n", settings.Embedding.BatchSize)
	for _, p := range domain.AllEmbeddingProviders() {
		ps := settings.Embedding.For(p)
		cmd.Printf("  %s:\n", p.Description())
		cmd.Printf("    Model: %s\n", ps.Model)
		if ps.BaseURL != "" {
			cmd.Printf("    Base URL: %s\n", ps.BaseURL)
		}
		if ps.APIKey != "" {
			cmd.Printf("    API Key: %s\n", maskAPIKey(ps.APIKey))
		} else {
			cmd.Printf("    API Key: (not set)\n")
		}
	}
	cmd.Println()

	cmd.Println("[RAG]")
	cmd.Printf("  Chunk size: %d\n", settings.RAG.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", settings.RAG.ChunkOverlap)
	cmd.Printf("  Top K: %d\n", settings.RAG.TopK)
	cmd.Printf("  Similarity threshold: %.2f\n", settings.RAG.SimilarityThreshold)
	cmd.Printf("  Max context tokens: %d\n", settings.RAG.MaxContextTokens)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Driver: %s\n", settings.Storage.Driver)
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	}
	if settings.Storage.DatabaseURL != "" {
		cmd.Printf("  Database URL: %s\n", maskAPIKey(settings.Storage.DatabaseURL))
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'qagent settings embedding' to fix provider issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(settingsInput)
	return configureEmbeddingProvider(cmd, reader)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword(reader)
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(commandContext(cmd)); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	key, value := args[0], args[1]
	if err := applySetting(&settings, key, value); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// settingSetters maps config keys to field updates.
var settingSetters = map[string]func(s *domain.Settings, v string) error{
	"embedding.provider": func(s *domain.Settings, v string) error {
		p := domain.AIProvider(v)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, v)
		}
		s.Embedding.Provider = p
		return nil
	},
	"embedding.batch_size":   intSetter(func(s *domain.Settings) *int { return &s.Embedding.BatchSize }),
	"embedding.openai.model": stringSetter(func(s *domain.Settings) *string { return &s.Embedding.OpenAI.Model }),
	"embedding.openai.base_url": stringSetter(func(s *domain.Settings) *string {
		return &s.Embedding.OpenAI.BaseURL
	}),
	"embedding.google.model": stringSetter(func(s *domain.Settings) *string { return &s.Embedding.Google.Model }),
	"rag.chunk_size":         intSetter(func(s *domain.Settings) *int { return &s.RAG.ChunkSize }),
	"rag.chunk_overlap":      intSetter(func(s *domain.Settings) *int { return &s.RAG.ChunkOverlap }),
	"rag.top_k":              intSetter(func(s *domain.Settings) *int { return &s.RAG.TopK }),
	"rag.max_context_tokens": intSetter(func(s *domain.Settings) *int { return &s.RAG.MaxContextTokens }),
	"rag.similarity_threshold": floatSetter(func(s *domain.Settings) *float64 {
		return &s.RAG.SimilarityThreshold
	}),
	"storage.driver":   stringSetter(func(s *domain.Settings) *string { return &s.Storage.Driver }),
	"storage.data_dir": stringSetter(func(s *domain.Settings) *string { return &s.Storage.DataDir }),
	"processing.stale_after": func(s *domain.Settings, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: stale_after must be a positive duration", domain.ErrInvalidInput)
		}
		s.Processing.StaleAfter = d
		return nil
	},
}

func applySetting(s *domain.Settings, key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return set(s, value)
}

func intSetter(field func(*domain.Settings) *int) func(*domain.Settings, string) error {
	return func(s *domain.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, v)
		}
		*field(s) = n
		return nil
	}
}

func floatSetter(field func(*domain.Settings) *float64) func(*domain.Settings, string) error {
	return func(s *domain.Settings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
		}
		*field(s) = f
		return nil
	}
}

func stringSetter(field func(*domain.Settings) *string) func(*domain.Settings, string) error {
	return func(s *domain.Settings, v string) error {
		*field(s) = v
		return nil
	}
}

func settingKeyList() string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "  " + strings.Join(keys, "\n  ")
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, else a plain line from reader.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
