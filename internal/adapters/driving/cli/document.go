package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
	"github.com/custodia-labs/questioning-agent/internal/extractors"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents",
	Long:  `Register, list, inspect and delete documents.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Register a document",
	Long: `Stores a PDF, DOCX, Markdown or text file and registers it as a document.
Use --process to index it straight away.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAdd,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print document chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes a document with its versions, chunks, embeddings and stored file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

// Flags for the add command.
var (
	addProcess  bool
	addProvider string
	addOwner    string
	addMIMEType string
)

func init() {
	documentAddCmd.Flags().BoolVarP(&addProcess, "process", "p", false, "process the document after registering it")
	documentAddCmd.Flags().StringVar(&addProvider, "provider", "", "embedding provider for --process (openai, google)")
	documentAddCmd.Flags().StringVar(&addOwner, "owner", "", "owner id recorded on the document")
	documentAddCmd.Flags().StringVar(&addMIMEType, "mime-type", "", "content type (default from the file extension)")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	mimeType := addMIMEType
	if mimeType == "" {
		mimeType = extractors.MIMETypeForExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		return fmt.Errorf("%w: cannot detect type of %s, use --mime-type", domain.ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ctx := commandContext(cmd)
	doc, err := documentService.Register(ctx, driving.RegisterRequest{
		OwnerID:  addOwner,
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	cmd.Printf("Registered document: %s\n", doc.ID)
	cmd.Printf("  Name: %s\n", doc.Name)
	cmd.Printf("  Type: %s\n", doc.MIMEType)
	cmd.Printf("  Size: %d bytes\n", doc.Size)

	if !addProcess {
		cmd.Printf("\nRun 'qagent process %s' to index it.\n", doc.ID)
		return nil
	}
	cmd.Println()
	return processDocument(cmd, doc.ID, domain.AIProvider(addProvider))
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents registered.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:   %s\n", docs[i].Name)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		if docs[i].Error != "" {
			cmd.Printf("    Error:  %s\n", docs[i].Error)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	details, err := documentService.GetDetails(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	doc := details.Document
	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:     %s\n", doc.Name)
	cmd.Printf("  Type:     %s\n", doc.MIMEType)
	cmd.Printf("  Size:     %d bytes\n", doc.Size)
	cmd.Printf("  Status:   %s\n", doc.Status)
	if doc.Error != "" {
		cmd.Printf("  Error:    %s\n", doc.Error)
	}
	if doc.OwnerID != "" {
		cmd.Printf("  Owner:    %s\n", doc.OwnerID)
	}
	cmd.Printf("  Chunks:   %d\n", details.ChunkCount)
	if details.LatestVersion > 0 {
		cmd.Printf("  Version:  %d\n", details.LatestVersion)
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.Chunks(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks. Process the document first.")
		return nil
	}

	for i := range chunks {
		cmd.Printf("--- Chunk %d [%d:%d] ---\n", chunks[i].Position, chunks[i].StartIndex, chunks[i].EndIndex)
		cmd.Println(chunks[i].Content)
		cmd.Println()
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}

// commandContext returns the command context, or Background when run directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
