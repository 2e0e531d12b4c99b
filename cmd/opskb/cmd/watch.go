package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	kberrors "github.com/opskb/opskb/internal/errors"
	"github.com/opskb/opskb/internal/watcher"
)

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	var corpusName string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a corpus directory and re-ingest on change",
		Long: `Watch the corpus' base directory and re-ingest after the filesystem
settles. Unchanged files are skipped by content hash, so a watch cycle
only touches what actually changed. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			corpus, err := a.requireCorpus(ctx, corpusName)
			if err != nil {
				return err
			}
			if corpus.BasePath == "" {
				return kberrors.New(kberrors.ErrCodeInvalidInput,
					"corpus has no base path to watch").WithDetail("name", corpusName)
			}

			debounce, err := time.ParseDuration(a.cfg.Watch.Debounce)
			if err != nil {
				debounce = watcher.DefaultDebounce
			}

			pipeline := a.pipeline()
			reingest := func(ctx context.Context) {
				report, err := pipeline.IngestDirectory(ctx, corpus.ID, corpus.BasePath, true)
				if err != nil {
					slog.ErrorContext(ctx, "watch.reingest_failed", "error", err)
					a.printer.Error(err)
					return
				}
				if report.ChunksCreated > 0 || len(report.Skipped) > 0 {
					a.printer.IngestReport(report)
				}
			}

			// Bring the corpus up to date before waiting for events.
			reingest(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (corpus %q)\n",
				corpus.BasePath, corpus.Name)

			w := watcher.New(corpus.BasePath, debounce, slog.Default(), reingest)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusName, "corpus", "", "Corpus to watch (must have a base path)")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}
