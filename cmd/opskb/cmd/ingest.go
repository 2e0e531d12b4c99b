package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// newIngestCmd creates the ingest command.
func newIngestCmd() *cobra.Command {
	var corpusName string
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest documents into a corpus",
		Long: `Read supported text files under the given path, chunk them and store
each chunk as a searchable knowledge entry. Files whose content has not
changed since the last run are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			corpus, err := a.store.EnsureCorpus(ctx, corpusName, root, "")
			if err != nil {
				return err
			}

			pipeline := a.pipeline()

			info, err := os.Stat(root)
			if err != nil {
				return err
			}
			if info.IsDir() {
				r, err := pipeline.IngestDirectory(ctx, corpus.ID, root, recursive)
				if err != nil {
					return err
				}
				a.printer.IngestReport(r)
				return nil
			}
			r, err := pipeline.IngestPaths(ctx, corpus.ID, []string{root})
			if err != nil {
				return err
			}
			a.printer.IngestReport(r)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusName, "corpus", "default", "Corpus to ingest into (created if missing)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Descend into subdirectories")
	return cmd
}
