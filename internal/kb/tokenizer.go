package kb

import (
	"regexp"
	"strings"
)

// wordRegex matches maximal runs of word characters: Unicode letters,
// digits, underscore and hyphen. Everything else is a separator.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_-]+`)

// Tokenize splits text into lowercase terms in their original order.
// Punctuation and whitespace are discarded, duplicates are kept, and empty
// input yields an empty slice. The function is pure and safe for
// concurrent use.
func Tokenize(text string) []string {
	words := wordRegex.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, strings.ToLower(word))
	}
	return tokens
}

// IndexText builds the text an entry is indexed under: question, answer
// and tags joined by single spaces.
func IndexText(e *Entry) string {
	return e.Question + " " + e.Answer + " " + strings.Join(e.Tags, " ")
}
