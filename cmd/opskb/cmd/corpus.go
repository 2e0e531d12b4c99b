package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

// newCorpusCmd creates the corpus command group.
func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage document corpora",
	}
	cmd.AddCommand(newCorpusCreateCmd())
	cmd.AddCommand(newCorpusListCmd())
	cmd.AddCommand(newCorpusDeleteCmd())
	return cmd
}

func newCorpusCreateCmd() *cobra.Command {
	var basePath, description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if basePath != "" {
				if basePath, err = filepath.Abs(basePath); err != nil {
					return err
				}
			}
			id, err := a.store.CreateCorpus(cmd.Context(), args[0], basePath, description)
			if err != nil {
				return err
			}
			a.printer.Successf("Created corpus %q (%s)", args[0], id)
			return nil
		},
	}

	cmd.Flags().StringVar(&basePath, "path", "", "Directory this corpus mirrors")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	return cmd
}

func newCorpusListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered corpora",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			corpora, err := a.store.ListCorpora(cmd.Context())
			if err != nil {
				return err
			}
			a.printer.Corpora(corpora)
			return nil
		},
	}
}

func newCorpusDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a corpus and everything ingested from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			corpus, err := a.requireCorpus(ctx, args[0])
			if err != nil {
				return err
			}
			deleted, err := a.store.DeleteCorpus(ctx, corpus.ID)
			if err != nil {
				return err
			}
			if deleted {
				a.engine.Invalidate()
				a.printer.Successf("Deleted corpus %q", args[0])
			}
			return nil
		},
	}
}
