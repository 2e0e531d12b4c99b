// Package cmd provides the CLI commands for opskb.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opskb/opskb/internal/logging"
	"github.com/opskb/opskb/pkg/version"
)

var (
	cfgPath   string
	debugMode bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the opskb CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opskb",
		Short: "Offline knowledge base for operations teams",
		Long: `opskb answers free-text questions from a local knowledge corpus.

Documents are ingested into chunked entries, indexed by keyword and
ranked with TF-IDF. Everything runs locally; no network access needed.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("opskb version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default ~/.config/opskb/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Debug logging, mirrored to stderr")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRun = stopLogging

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newEntryCmd())
	cmd.AddCommand(newCorpusCmd())
	cmd.AddCommand(newBlueprintCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging routes slog to the rotating log file so stdout stays free
// for command output.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg.Level = "debug"
		cfg.Stderr = true
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
