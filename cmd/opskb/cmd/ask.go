package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// newAskCmd creates the ask command.
func newAskCmd() *cobra.Command {
	var limit int
	var corpusName string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the knowledge base",
		Long: `Rank knowledge entries against the question with TF-IDF and print
the best matches. When nothing matches, the most recent entries are shown
instead so there is always material to work with.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			query := strings.Join(args, " ")

			corpusID := ""
			if corpus, err := a.resolveCorpus(ctx, corpusName); err != nil {
				return err
			} else if corpus != nil {
				corpusID = corpus.ID
			}

			if limit <= 0 {
				limit = a.cfg.Answer.Limit
			}

			result, err := a.engine.Answer(ctx, query, limit, corpusID)
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "ask.completed",
				"query", query,
				"kind", result.Kind.String(),
				"matches", len(result.Matches))

			a.printer.Answer(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum matches to show (default from config)")
	cmd.Flags().StringVar(&corpusName, "corpus", "", "Restrict to one corpus by name")
	return cmd
}
