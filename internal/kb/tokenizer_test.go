package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_BasicSplitting(t *testing.T) {
	tokens := Tokenize("How do I restart the cooling pump?")
	assert.Equal(t, []string{"how", "do", "i", "restart", "the", "cooling", "pump"}, tokens)
}

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \n\t"))
	assert.Empty(t, Tokenize("!!! ... ???"))
}

func TestTokenize_UnicodeScripts(t *testing.T) {
	// CJK text has no spaces between words but is separated here; each run
	// of letters must survive as one lowercase token.
	tokens := Tokenize("冷却液 安全")
	assert.Equal(t, []string{"冷却液", "安全"}, tokens)
}

func TestTokenize_KeepsHyphensAndDigits(t *testing.T) {
	tokens := Tokenize("ISO9001-8.5 re-check pH7")
	assert.Equal(t, []string{"iso9001-8", "5", "re-check", "ph7"}, tokens)
}

func TestTokenize_PreservesOrderAndDuplicates(t *testing.T) {
	tokens := Tokenize("pump, pump; PUMP")
	assert.Equal(t, []string{"pump", "pump", "pump"}, tokens)
}

func TestIndexText_JoinsQuestionAnswerTags(t *testing.T) {
	e := &Entry{
		Question: "q text",
		Answer:   "a text",
		Tags:     []string{"safety", "coolant"},
	}
	assert.Equal(t, "q text a text safety coolant", IndexText(e))
}
