package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opskb/opskb/internal/answer"
	"github.com/opskb/opskb/internal/kb"
)

func testPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	// A bytes.Buffer is not a TTY, so styles stay plain.
	return NewPrinter(&buf), &buf
}

func TestAnswer_RankedOutput(t *testing.T) {
	p, buf := testPrinter()
	p.Answer(answer.Result{
		Kind: answer.MatchRanked,
		Matches: []answer.Match{
			{Entry: &kb.Entry{Title: "Pump seal check", Answer: "Inspect the seal.", Tags: []string{"pump"}}, Score: 2.5},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "1. Pump seal check")
	assert.Contains(t, out, "(score 2.50)")
	assert.Contains(t, out, "tags: pump")
	assert.Contains(t, out, "   Inspect the seal.")
}

func TestAnswer_FallbackNoteAndNoScores(t *testing.T) {
	p, buf := testPrinter()
	p.Answer(answer.Result{
		Kind: answer.MatchFallback,
		Matches: []answer.Match{
			{Entry: &kb.Entry{Title: "Recent entry", Answer: "text"}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "No direct match")
	assert.NotContains(t, out, "score")
}

func TestAnswer_EmptyResult(t *testing.T) {
	p, buf := testPrinter()
	p.Answer(answer.Result{Kind: answer.MatchRanked})
	assert.Contains(t, buf.String(), "No entries in the knowledge base yet.")
}

func TestIngestReport(t *testing.T) {
	p, buf := testPrinter()
	p.IngestReport(&kb.IngestReport{
		FilesProcessed: 2,
		ChunksCreated:  5,
		Skipped:        []string{"a.bin", "b.exe"},
	})

	out := buf.String()
	assert.Contains(t, out, "Processed 2 file(s), created 5 chunk(s).")
	assert.Contains(t, out, "Skipped 2 file(s): a.bin, b.exe")
}

func TestError_RendersMessage(t *testing.T) {
	p, buf := testPrinter()
	p.Error(errors.New("corpus not found"))
	assert.Contains(t, buf.String(), "Error: corpus not found")
}

func TestCorpora_Empty(t *testing.T) {
	p, buf := testPrinter()
	p.Corpora(nil)
	assert.Contains(t, buf.String(), "No corpora registered.")
}
