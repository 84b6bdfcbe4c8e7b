package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

var processProvider string

var processCmd = &cobra.Command{
	Use:   "process [doc-id]",
	Short: "Index a registered document",
	Long: `Extracts the text of a document, splits it into chunks, embeds every
chunk and stores the vectors. Reprocessing replaces the previous chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processProvider, "provider", "", "embedding provider (openai, google)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	return processDocument(cmd, args[0], domain.AIProvider(processProvider))
}

func processDocument(cmd *cobra.Command, documentID string, provider domain.AIProvider) error {
	if processor == nil {
		return errors.New("processor not configured")
	}

	cmd.Printf("Processing document %s...\n", documentID)
	result := processor.Process(commandContext(cmd), documentID, domain.ProcessOptions{Provider: provider})
	if !result.Success {
		if result.Err != nil {
			return fmt.Errorf("processing failed: %w", result.Err)
		}
		return fmt.Errorf("processing failed: %s", result.Error)
	}

	cmd.Printf("Indexed %d chunks (%d embeddings)\n", result.ChunkCount, result.EmbeddingCount)
	return nil
}
