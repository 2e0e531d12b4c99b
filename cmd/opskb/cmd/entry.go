package cmd

import (
	"github.com/spf13/cobra"
)

// newEntryCmd creates the entry command group.
func newEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage knowledge entries",
	}
	cmd.AddCommand(newEntryAddCmd())
	cmd.AddCommand(newEntryListCmd())
	return cmd
}

func newEntryAddCmd() *cobra.Command {
	var title, question, answer, corpusName string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a knowledge entry by hand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			corpusID := ""
			if corpus, err := a.resolveCorpus(ctx, corpusName); err != nil {
				return err
			} else if corpus != nil {
				corpusID = corpus.ID
			}

			id, err := a.store.CreateEntry(ctx, title, question, answer, tags, corpusID)
			if err != nil {
				return err
			}
			a.engine.Invalidate()
			a.printer.Successf("Created entry %s", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Entry title")
	cmd.Flags().StringVar(&question, "question", "", "Question the entry answers")
	cmd.Flags().StringVar(&answer, "answer", "", "Answer text")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&corpusName, "corpus", "", "Corpus to attach the entry to")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func newEntryListCmd() *cobra.Command {
	var corpusName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			corpusID := ""
			if corpus, err := a.resolveCorpus(ctx, corpusName); err != nil {
				return err
			} else if corpus != nil {
				corpusID = corpus.ID
			}

			entries, err := a.store.ListEntries(ctx, corpusID)
			if err != nil {
				return err
			}
			a.printer.Entries(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusName, "corpus", "", "Restrict to one corpus by name")
	return cmd
}
