// Package cli provides the qagent command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
	"github.com/custodia-labs/questioning-agent/internal/logger"
)

// version is set by SetVersion from the build.
var version = "dev"

// Services set by bootstrap, or directly by tests.
var (
	documentService driving.DocumentService
	processor       driving.DocumentProcessor
	assembler       driving.ContextAssembler
	settingsService driving.SettingsService
)

// Persistent flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// annotationNoServices marks commands that run without bootstrapping.
const annotationNoServices = "qagent/no-services"

// Options are the persistent flag values passed to bootstrap.
type Options struct {
	Verbose   bool
	ConfigDir string
	DataDir   string
}

// Services holds the driving ports the commands run against.
type Services struct {
	Documents driving.DocumentService
	Processor driving.DocumentProcessor
	Context   driving.ContextAssembler
	Settings  driving.SettingsService
}

// Bootstrap builds the services. The returned cleanup runs after the command.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func() error, error)

var (
	bootstrap Bootstrap
	cleanup   func() error
)

// SetBootstrap installs the function that wires the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "qagent",
	Short: "Questioning agent: ask questions about your documents",
	Long: `qagent indexes PDF, DOCX, Markdown and text documents into a vector
index and answers questions with the most relevant passages.

Register a document, process it, then query it:
  qagent document add report.pdf --process
  qagent query <document-id> "What were the findings?"`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.qagent)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.qagent/data)")
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if _, skip := cmd.Annotations[annotationNoServices]; skip {
		return nil
	}
	if bootstrap == nil || servicesReady() {
		return nil
	}

	svc, done, err := bootstrap(cmd.Context(), Options{
		Verbose:   verbose,
		ConfigDir: configDir,
		DataDir:   dataDir,
	})
	if err != nil {
		return err
	}
	documentService = svc.Documents
	processor = svc.Processor
	assembler = svc.Context
	settingsService = svc.Settings
	cleanup = done
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if cleanup == nil {
		return nil
	}
	done := cleanup
	cleanup = nil
	return done()
}

func servicesReady() bool {
	return documentService != nil && processor != nil && assembler != nil && settingsService != nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		err = errors.Join(err, teardownServices(rootCmd, nil))
	}
	return err
}
