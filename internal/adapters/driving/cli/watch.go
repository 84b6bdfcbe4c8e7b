package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
	"github.com/custodia-labs/questioning-agent/internal/inbox"
	"github.com/custodia-labs/questioning-agent/internal/logger"
)

var (
	watchProvider string
	watchExisting bool
	watchOwner    string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index documents dropped into a directory",
	Long: `Watches a directory and registers and processes every new PDF, DOCX,
Markdown or text file once it has finished being written. Each file is
ingested once per run. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchProvider, "provider", "", "embedding provider (openai, google)")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest files already in the directory")
	watchCmd.Flags().StringVar(&watchOwner, "owner", "", "owner id recorded on new documents")
	rootCmd.AddCommand(watchCmd)
}

// ingestor registers and processes inbox files, each path at most once.
type ingestor struct {
	cmd      *cobra.Command
	provider domain.AIProvider
	owner    string
	seen     map[string]string
}

func newIngestor(cmd *cobra.Command) *ingestor {
	return &ingestor{
		cmd:      cmd,
		provider: domain.AIProvider(watchProvider),
		owner:    watchOwner,
		seen:     make(map[string]string),
	}
}

// handle ingests a created or updated file the first time it is seen.
// Failures are reported and do not stop the watch.
func (g *ingestor) handle(change inbox.Change) {
	if change.Type == inbox.ChangeDeleted {
		logger.Debug("Ignoring removed file %s", change.Path)
		return
	}
	if !change.Supported() {
		logger.Debug("Skipping unsupported file %s (%s)", change.Path, change.MIMEType)
		return
	}
	if id, ok := g.seen[change.Path]; ok {
		logger.Debug("Already ingested %s as %s", change.Path, id)
		return
	}

	data, err := os.ReadFile(change.Path)
	if err != nil {
		g.cmd.PrintErrf("Failed to read %s: %v\n", change.Path, err)
		return
	}

	ctx := commandContext(g.cmd)
	doc, err := documentService.Register(ctx, driving.RegisterRequest{
		OwnerID:  g.owner,
		Name:     filepath.Base(change.Path),
		MIMEType: change.MIMEType,
		Data:     data,
	})
	if err != nil {
		g.cmd.PrintErrf("Failed to register %s: %v\n", change.Path, err)
		return
	}
	g.seen[change.Path] = doc.ID

	result := processor.Process(ctx, doc.ID, domain.ProcessOptions{Provider: g.provider})
	if !result.Success {
		g.cmd.PrintErrf("Failed to process %s (%s): %s\n", change.Path, doc.ID, result.Error)
		return
	}
	g.cmd.Printf("Indexed %s as %s (%d chunks)\n", filepath.Base(change.Path), doc.ID, result.ChunkCount)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil || processor == nil {
		return errors.New("services not configured")
	}

	ctx := commandContext(cmd)
	w := inbox.New(args[0])
	defer w.Close()

	g := newIngestor(cmd)

	if watchExisting {
		existing, err := w.Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan directory: %w", err)
		}
		for _, change := range existing {
			g.handle(change)
		}
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	cmd.Printf("Watching %s for new documents...\n", w.Root())
	for change := range changes {
		g.handle(change)
	}
	return nil
}
