// Package output renders command results for the terminal. Colors are
// enabled only when writing to an interactive terminal without NO_COLOR
// set, so piped output stays plain.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/opskb/opskb/internal/answer"
	"github.com/opskb/opskb/internal/kb"
)

// Styles holds the render styles for one printer.
type Styles struct {
	Title   lipgloss.Style
	Score   lipgloss.Style
	Tag     lipgloss.Style
	Dim     lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func colorStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45")),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		Tag:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func plainStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle(),
		Score:   lipgloss.NewStyle(),
		Tag:     lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
	}
}

// Printer writes rendered results to a single destination.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter builds a printer for w, choosing colored or plain styles.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w, styles: stylesFor(w)}
}

func stylesFor(w io.Writer) Styles {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return plainStyles()
	}
	if f, ok := w.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return colorStyles()
		}
	}
	return plainStyles()
}

// Answer renders a question's result set. Fallback results get a note so
// the reader knows the matches are unranked.
func (p *Printer) Answer(result answer.Result) {
	if len(result.Matches) == 0 {
		fmt.Fprintln(p.out, "No entries in the knowledge base yet.")
		return
	}
	if result.Kind == answer.MatchFallback {
		fmt.Fprintln(p.out, p.styles.Warning.Render(
			"No direct match; showing recent entries instead."))
		fmt.Fprintln(p.out)
	}
	for i, m := range result.Matches {
		header := fmt.Sprintf("%d. %s", i+1, m.Entry.Title)
		if result.Kind == answer.MatchRanked {
			header += "  " + p.styles.Score.Render(fmt.Sprintf("(score %.2f)", m.Score))
		}
		fmt.Fprintln(p.out, p.styles.Title.Render(header))
		if len(m.Entry.Tags) > 0 {
			fmt.Fprintln(p.out, p.styles.Tag.Render("   tags: "+strings.Join(m.Entry.Tags, ", ")))
		}
		for _, line := range strings.Split(strings.TrimSpace(m.Entry.Answer), "\n") {
			fmt.Fprintln(p.out, "   "+line)
		}
		if i < len(result.Matches)-1 {
			fmt.Fprintln(p.out)
		}
	}
}

// IngestReport summarizes an ingestion run.
func (p *Printer) IngestReport(report *kb.IngestReport) {
	fmt.Fprintf(p.out, "Processed %d file(s), created %d chunk(s).\n",
		report.FilesProcessed, report.ChunksCreated)
	if len(report.Skipped) > 0 {
		fmt.Fprintln(p.out, p.styles.Warning.Render(
			fmt.Sprintf("Skipped %d file(s): %s",
				len(report.Skipped), strings.Join(report.Skipped, ", "))))
	}
}

// Entries lists knowledge entries one per line.
func (p *Printer) Entries(entries []*kb.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No entries found.")
		return
	}
	for _, e := range entries {
		line := e.Title
		if len(e.Tags) > 0 {
			line += "  " + p.styles.Tag.Render("["+strings.Join(e.Tags, ", ")+"]")
		}
		fmt.Fprintln(p.out, line)
		fmt.Fprintln(p.out, p.styles.Dim.Render("  "+e.ID))
	}
}

// Corpora lists corpora with their base paths.
func (p *Printer) Corpora(corpora []*kb.Corpus) {
	if len(corpora) == 0 {
		fmt.Fprintln(p.out, "No corpora registered.")
		return
	}
	for _, c := range corpora {
		line := c.Name
		if c.BasePath != "" {
			line += "  " + p.styles.Dim.Render(c.BasePath)
		}
		fmt.Fprintln(p.out, line)
	}
}

// Error renders a failure message.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.out, p.styles.Error.Render("Error: "+err.Error()))
}

// Successf renders a plain formatted line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
