package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opskb/opskb/internal/blueprint"
)

// newBlueprintCmd creates the blueprint command group.
func newBlueprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Work with knowledge blueprint documents",
		Long: `Blueprints are markdown documents with a JSON metadata block and
conventional sections (procedure, parameters, risks, FAQ). Importing one
turns each section into a tagged knowledge entry.`,
	}
	cmd.AddCommand(newBlueprintTemplateCmd())
	cmd.AddCommand(newBlueprintImportCmd())
	return cmd
}

func newBlueprintTemplateCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print (or write) a starter blueprint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outPath == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), blueprint.Template)
				return err
			}
			if err := os.WriteFile(outPath, []byte(blueprint.Template), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote blueprint template to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the template to a file instead of stdout")
	return cmd
}

func newBlueprintImportCmd() *cobra.Command {
	var corpusName string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a blueprint document as knowledge entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			doc, err := blueprint.Parse(string(data))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			corpusID := ""
			if corpus, err := a.resolveCorpus(ctx, corpusName); err != nil {
				return err
			} else if corpus != nil {
				corpusID = corpus.ID
			}

			for _, entry := range doc.Entries {
				if _, err := a.store.CreateEntry(ctx,
					entry.Title, entry.Question, entry.Answer, entry.Tags, corpusID); err != nil {
					return err
				}
			}
			a.engine.Invalidate()
			a.printer.Successf("Imported %d entr%s from %s",
				len(doc.Entries), pluralY(len(doc.Entries)), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusName, "corpus", "", "Corpus to attach the entries to")
	return cmd
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
