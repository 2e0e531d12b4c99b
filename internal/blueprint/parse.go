// Package blueprint parses structured knowledge blueprint documents:
// markdown files with a JSON metadata block and conventional sections
// (overview, procedure, parameters, decision points, risk controls, FAQ,
// references). Each recognized section becomes one ready-to-store
// knowledge entry.
package blueprint

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	kberrors "github.com/opskb/opskb/internal/errors"
)

// Discriminator is the required "type" value of the metadata block.
const Discriminator = "knowledge_blueprint"

// Section titles the parser recognizes.
const (
	SectionOverview   = "Overview"
	SectionScenario   = "Scenario"
	SectionProcedure  = "Procedure"
	SectionParameters = "Parameters"
	SectionDecisions  = "Decision Points"
	SectionRisks      = "Risk Controls"
	SectionFAQ        = "FAQ"
	SectionReferences = "References"
)

// Entry is a knowledge item extracted from a blueprint.
type Entry struct {
	Title    string
	Question string
	Answer   string
	Tags     []string
}

// Document is the parsed blueprint.
type Document struct {
	Metadata Metadata
	Sections map[string]string
	Entries  []Entry
}

// LooksLike reports whether text is plausibly a blueprint document, cheap
// enough to run on every ingested file.
func LooksLike(text string) bool {
	return strings.Contains(text, Discriminator) && strings.Contains(text, "```json")
}

var (
	stepRe   = regexp.MustCompile(`^(?:\d+[.)]|[-*])\s*(.+)$`)
	bulletRe = regexp.MustCompile(`^[-*]\s*(.+)$`)
	faqRe    = regexp.MustCompile(`^###\s*Q[:：]\s*(.+)$`)
	fieldRe  = regexp.MustCompile(`^(Symptom|Cause|Action|Verification|Notes)\s*[:：]\s*(.*)$`)
)

// Parse extracts the metadata, sections and knowledge entries from a
// blueprint document. A missing or malformed metadata block, a wrong type
// discriminator, or a blueprint yielding no entries are reported as
// structured errors.
func Parse(text string) (*Document, error) {
	raw := scan(text)

	meta, err := parseMetadata(raw.metaJSON)
	if err != nil {
		return nil, err
	}

	sections := make(map[string]string, len(raw.sections))
	for _, s := range raw.sections {
		sections[s.title] = s.content
	}

	name := meta.First("process_name", "name", "title").Text(" ")
	if name == "" {
		name = "this process"
	}

	baseTags := meta.Tags()
	if !containsTag(baseTags, "blueprint") {
		baseTags = append(baseTags, "blueprint")
	}

	doc := &Document{Metadata: meta, Sections: sections}

	if e, ok := overviewEntry(meta, raw, name, baseTags); ok {
		doc.Entries = append(doc.Entries, e)
	}
	if e, ok := procedureEntry(raw.section(SectionProcedure), name, baseTags); ok {
		doc.Entries = append(doc.Entries, e)
	}
	if e, ok := parametersEntry(raw.section(SectionParameters), name, baseTags); ok {
		doc.Entries = append(doc.Entries, e)
	}
	if e, ok := bulletEntry(raw.section(SectionDecisions), name, baseTags,
		"Decision Points", "What are the decision points for %s?", "decision"); ok {
		doc.Entries = append(doc.Entries, e)
	}
	if e, ok := bulletEntry(raw.section(SectionRisks), name, baseTags,
		"Risk Controls", "How are risks prevented and handled in %s?", "risk"); ok {
		doc.Entries = append(doc.Entries, e)
	}
	doc.Entries = append(doc.Entries, faqEntries(raw.section(SectionFAQ), name, baseTags)...)
	if e, ok := bulletEntry(raw.section(SectionReferences), name, baseTags,
		"References", "Where can I learn more about %s?", "reference"); ok {
		doc.Entries = append(doc.Entries, e)
	}

	if len(doc.Entries) == 0 {
		return nil, kberrors.New(kberrors.ErrCodeBlueprintEmpty,
			"no usable content found in blueprint")
	}
	return doc, nil
}

func parseMetadata(metaJSON string) (Metadata, error) {
	if metaJSON == "" {
		return Metadata{}, kberrors.New(kberrors.ErrCodeBlueprintMetadata,
			"missing JSON metadata block")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(metaJSON), &raw); err != nil {
		return Metadata{}, kberrors.Wrap(kberrors.ErrCodeBlueprintMetadata,
			"metadata block is not a JSON object", err)
	}
	meta := newMetadata(raw)
	if meta.Get("type").Text("") != Discriminator {
		return Metadata{}, kberrors.New(kberrors.ErrCodeBlueprintDiscriminator,
			"metadata type must be "+Discriminator)
	}
	return meta, nil
}

func overviewEntry(meta Metadata, raw *rawDocument, name string, baseTags []string) (Entry, bool) {
	var parts []string

	if summary := meta.Get("summary"); summary.IsSet() {
		parts = append(parts, summary.Text(" "))
	}
	if scope := meta.Get("scope"); scope.IsSet() {
		parts = append(parts, "Scope: "+scope.Text(" "))
	}

	var details []string
	if owner := meta.Get("owner"); owner.IsSet() {
		details = append(details, "Owner: "+owner.Text(", "))
	}
	if version := meta.Get("version"); version.IsSet() {
		details = append(details, "Version: "+version.Text(" "))
	}
	if reviewed := meta.Get("last_reviewed"); reviewed.IsSet() {
		details = append(details, "Last reviewed: "+reviewed.Text(" "))
	}
	if len(details) > 0 {
		parts = append(parts, strings.Join(details, "; "))
	}

	if equipment := meta.Get("equipment"); equipment.IsSet() {
		parts = append(parts, "Key equipment: "+equipment.Text(", "))
	}

	for _, title := range []string{SectionOverview, SectionScenario} {
		if content := raw.section(title); content != "" {
			parts = append(parts, content)
		}
	}

	if len(parts) == 0 {
		return Entry{}, false
	}
	return Entry{
		Title:    name + " - Overview",
		Question: fmt.Sprintf("What is the background and scope of %s?", name),
		Answer:   strings.TrimSpace(strings.Join(parts, "\n\n")),
		Tags:     appendTag(baseTags, "overview"),
	}, true
}

func procedureEntry(section, name string, baseTags []string) (Entry, bool) {
	var steps []string
	for _, line := range nonBlankLines(section) {
		if m := stepRe.FindStringSubmatch(line); m != nil {
			steps = append(steps, strings.TrimSpace(m[1]))
		}
	}
	if len(steps) == 0 {
		return Entry{}, false
	}
	formatted := make([]string, len(steps))
	for i, step := range steps {
		formatted[i] = fmt.Sprintf("%d. %s", i+1, step)
	}
	return Entry{
		Title:    name + " - Procedure",
		Question: fmt.Sprintf("How is the standard procedure for %s carried out?", name),
		Answer:   strings.Join(formatted, "\n"),
		Tags:     appendTag(baseTags, "procedure"),
	}, true
}

func parametersEntry(section, name string, baseTags []string) (Entry, bool) {
	lines := formatParameterLines(section)
	if len(lines) == 0 {
		return Entry{}, false
	}
	return Entry{
		Title:    name + " - Parameters",
		Question: fmt.Sprintf("Which key parameters does %s require?", name),
		Answer:   strings.Join(lines, "\n"),
		Tags:     appendTag(baseTags, "parameters"),
	}, true
}

// formatParameterLines renders a markdown table as "Header: cell | ..."
// lines, or falls back to the section's bullet items.
func formatParameterLines(section string) []string {
	table := parseTable(section)
	if len(table) >= 2 {
		headers := table[0]
		var lines []string
		for _, row := range table[1:] {
			var pairs []string
			for i, cell := range row {
				if strings.TrimSpace(cell) == "" {
					continue
				}
				header := fmt.Sprintf("column %d", i+1)
				if i < len(headers) {
					header = headers[i]
				}
				pairs = append(pairs, header+": "+cell)
			}
			if len(pairs) > 0 {
				lines = append(lines, strings.Join(pairs, " | "))
			}
		}
		return lines
	}

	var lines []string
	for _, line := range nonBlankLines(section) {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			lines = append(lines, strings.TrimSpace(m[1]))
		}
	}
	return lines
}

// parseTable collects the cell rows of a markdown table, dropping the
// separator row of dashes.
func parseTable(section string) [][]string {
	var rows [][]string
	for _, line := range nonBlankLines(section) {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		inner := strings.Trim(line, "|")
		cells := strings.Split(inner, "|")
		separator := true
		for i, cell := range cells {
			cells[i] = strings.TrimSpace(cell)
			if strings.Trim(cells[i], "- ") != "" {
				separator = false
			}
		}
		if separator {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

func bulletEntry(section, name string, baseTags []string, label, questionFmt, tag string) (Entry, bool) {
	var items []string
	for _, line := range nonBlankLines(section) {
		items = append(items, strings.Trim(line, "-* "))
	}
	if len(items) == 0 {
		return Entry{}, false
	}
	formatted := make([]string, len(items))
	for i, item := range items {
		formatted[i] = "- " + item
	}
	return Entry{
		Title:    name + " - " + label,
		Question: fmt.Sprintf(questionFmt, name),
		Answer:   strings.Join(formatted, "\n"),
		Tags:     appendTag(baseTags, tag),
	}, true
}

// faqLabels is the rendering order of FAQ answer fields.
var faqLabels = []string{"Symptom", "Cause", "Action", "Verification", "Notes"}

func faqEntries(section, name string, baseTags []string) []Entry {
	if section == "" {
		return nil
	}

	type faq struct {
		question string
		fields   map[string]string
	}
	var faqs []faq
	var current *faq
	var currentField string

	for _, rawLine := range strings.Split(section, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if m := faqRe.FindStringSubmatch(line); m != nil {
			faqs = append(faqs, faq{
				question: strings.TrimSpace(m[1]),
				fields:   make(map[string]string),
			})
			current = &faqs[len(faqs)-1]
			currentField = ""
			continue
		}
		if current == nil {
			continue
		}
		if m := fieldRe.FindStringSubmatch(line); m != nil {
			currentField = m[1]
			current.fields[currentField] = strings.TrimSpace(m[2])
		} else if currentField != "" {
			// Continuation line of the previous field.
			current.fields[currentField] += "\n" + line
		}
	}

	var entries []Entry
	for _, f := range faqs {
		if f.question == "" {
			continue
		}
		var parts []string
		for _, label := range faqLabels {
			if value := f.fields[label]; value != "" {
				parts = append(parts, label+": "+value)
			}
		}
		answer := strings.Join(parts, "\n")
		if answer == "" {
			answer = strings.TrimSpace(section)
		}
		entries = append(entries, Entry{
			Title:    name + " - FAQ: " + f.question,
			Question: f.question,
			Answer:   answer,
			Tags:     appendTag(baseTags, "faq"),
		})
	}
	return entries
}

func nonBlankLines(section string) []string {
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// appendTag copies the base tags so callers never share backing arrays.
func appendTag(base []string, tag string) []string {
	out := make([]string, 0, len(base)+1)
	out = append(out, base...)
	return append(out, tag)
}
