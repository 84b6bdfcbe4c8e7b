package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

var (
	queryTopK      int
	queryThreshold float64
	queryProvider  string
	queryRerank    bool
	queryMaxTokens int
	queryMerge     bool
	queryRank      bool
	queryPrompt    bool
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [doc-id] [question]",
	Short: "Retrieve context for a question",
	Long: `Embeds the question, finds the most similar chunks of the document and
packs them into a token-bounded context window.

Use --prompt to print the answer prompt with the context filled in, ready to
hand to a language model.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", 0, "minimum similarity in [0,1] (default from settings)")
	queryCmd.Flags().StringVar(&queryProvider, "provider", "", "embedding provider (openai, google)")
	queryCmd.Flags().BoolVar(&queryRerank, "rerank", false, "re-rank candidates by keyword overlap")
	queryCmd.Flags().IntVar(&queryMaxTokens, "max-tokens", 0, "context window budget (default from settings)")
	queryCmd.Flags().BoolVar(&queryMerge, "merge", false, "merge chunks with consecutive positions")
	queryCmd.Flags().BoolVar(&queryRank, "rank", false, "order chunks by similarity, keywords and position")
	queryCmd.Flags().BoolVar(&queryPrompt, "prompt", false, "print the rendered answer prompt")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if assembler == nil {
		return errors.New("context assembler not configured")
	}

	opts := domain.ContextOptions{
		Retrieval: domain.RetrievalOptions{
			TopK:     queryTopK,
			Provider: domain.AIProvider(queryProvider),
			Rerank:   queryRerank,
		},
		MaxTokens:     queryMaxTokens,
		Merge:         queryMerge,
		Rank:          queryRank,
		IncludePrompt: queryPrompt,
	}
	if cmd.Flags().Changed("threshold") {
		opts.Retrieval.SimilarityThreshold = domain.Threshold(queryThreshold)
	}

	result, err := assembler.Assemble(commandContext(cmd), args[0], args[1], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, result)
	}
	if queryPrompt && result.Prompt != "" {
		cmd.Println(result.Prompt)
		return nil
	}
	return outputQueryText(cmd, result)
}

func outputQueryJSON(cmd *cobra.Command, result *domain.AssembledContext) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, result *domain.AssembledContext) error {
	if len(result.Window.Chunks) == 0 {
		cmd.Println("No relevant context found.")
		return nil
	}

	meta := result.Retrieval.Metadata
	cmd.Printf("Found %d of %d chunks (%d/%d tokens, %s, %dms)\n\n",
		len(result.Window.Chunks), meta.TotalResults,
		result.Window.TotalTokens, result.Window.MaxTokens,
		meta.Model, result.Retrieval.LatencyMs())

	cmd.Println(result.Formatted)

	if len(result.Evidence) > 0 {
		cmd.Println()
		cmd.Println("Evidence:")
		for i, e := range result.Evidence {
			cmd.Printf("  [%d] %s\n", i+1, e)
		}
	}
	return nil
}
