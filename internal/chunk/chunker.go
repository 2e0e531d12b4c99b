// Package chunk splits document text into overlapping windows sized for
// keyword retrieval. Sizes are measured in runes so CJK text chunks the
// same way as ASCII.
package chunk

import "strings"

const (
	// DefaultSize is the target chunk length in runes.
	DefaultSize = 800
	// DefaultOverlap is how many trailing runes of a chunk seed the next one.
	DefaultOverlap = 80
)

// Split breaks text into overlapping chunks. Non-blank lines are accumulated
// and joined with newlines; once the joined buffer reaches size runes it is
// emitted and the last overlap runes carry over into the next buffer. The
// final partial buffer is always emitted. Empty input yields nil.
func Split(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			lines = []string{trimmed}
		} else {
			return nil
		}
	}

	var chunks []string
	var buffer []string
	for _, line := range lines {
		buffer = append(buffer, line)
		joined := strings.Join(buffer, "\n")
		runes := []rune(joined)
		if len(runes) >= size {
			chunks = append(chunks, joined)
			if overlap > 0 {
				tail := runes
				if len(tail) > overlap {
					tail = tail[len(tail)-overlap:]
				}
				buffer = []string{string(tail)}
			} else {
				buffer = nil
			}
		}
	}
	if len(buffer) > 0 {
		chunks = append(chunks, strings.Join(buffer, "\n"))
	}
	return chunks
}
