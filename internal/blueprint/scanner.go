package blueprint

import "strings"

// rawDocument is the scanner's output: the first JSON metadata block and
// the level-two sections in document order.
type rawDocument struct {
	metaJSON string
	sections []rawSection
}

type rawSection struct {
	title   string
	content string
}

// section returns a section's content by title, or "".
func (d *rawDocument) section(title string) string {
	for _, s := range d.sections {
		if s.title == title {
			return s.content
		}
	}
	return ""
}

// scan walks the document line by line, tracking code fences so that a
// "## " or "```json" inside a fenced example never opens a section or a
// metadata block. Only the first json fence is captured as metadata.
func scan(text string) *rawDocument {
	doc := &rawDocument{}

	var (
		inFence   bool
		fenceLang string
		fenceBody []string

		currentTitle string
		currentBody  []string
		inSection    bool
	)

	flushSection := func() {
		if inSection {
			doc.sections = append(doc.sections, rawSection{
				title:   currentTitle,
				content: strings.TrimSpace(strings.Join(currentBody, "\n")),
			})
		}
		currentBody = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if inFence {
			if strings.HasPrefix(trimmed, "```") {
				inFence = false
				if fenceLang == "json" && doc.metaJSON == "" {
					doc.metaJSON = strings.TrimSpace(strings.Join(fenceBody, "\n"))
				}
				fenceBody = nil
				if inSection {
					currentBody = append(currentBody, line)
				}
			} else {
				fenceBody = append(fenceBody, line)
				if inSection {
					currentBody = append(currentBody, line)
				}
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			inFence = true
			fenceLang = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
			if inSection {
				currentBody = append(currentBody, line)
			}
			continue
		}

		if title, ok := sectionHeading(trimmed); ok {
			flushSection()
			currentTitle = title
			inSection = true
			continue
		}

		if inSection {
			currentBody = append(currentBody, line)
		}
	}
	flushSection()
	return doc
}

// sectionHeading matches "## Title" but not "###" and deeper.
func sectionHeading(line string) (string, bool) {
	if !strings.HasPrefix(line, "## ") {
		return "", false
	}
	title := strings.TrimSpace(strings.TrimPrefix(line, "## "))
	if title == "" {
		return "", false
	}
	return title, true
}
