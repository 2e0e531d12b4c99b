package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyInput(t *testing.T) {
	assert.Nil(t, Split("", DefaultSize, DefaultOverlap))
	assert.Nil(t, Split("   \n\t\n", DefaultSize, DefaultOverlap))
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	chunks := Split("pump maintenance basics", DefaultSize, DefaultOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, "pump maintenance basics", chunks[0])
}

func TestSplit_BlankLinesDroppedAndLinesJoined(t *testing.T) {
	text := "first line\n\n   \nsecond line\nthird line\n"
	chunks := Split(text, DefaultSize, DefaultOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, "first line\nsecond line\nthird line", chunks[0])
}

func TestSplit_EmitsAtSizeWithOverlapCarry(t *testing.T) {
	line := strings.Repeat("a", 60)
	text := strings.Join([]string{line, line, line}, "\n")

	chunks := Split(text, 100, 10)
	require.Len(t, chunks, 2)

	// First chunk: two 60-rune lines joined by a newline.
	assert.Equal(t, line+"\n"+line, chunks[0])
	// Second chunk starts with the last 10 runes of the first.
	first := []rune(chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], string(first[len(first)-10:])))
	assert.True(t, strings.HasSuffix(chunks[1], line))
}

func TestSplit_ZeroOverlapNeverRepeats(t *testing.T) {
	line := strings.Repeat("b", 50)
	text := strings.Join([]string{line, line, line, line}, "\n")

	chunks := Split(text, 100, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, line+"\n"+line, chunks[0])
	assert.Equal(t, line+"\n"+line, chunks[1])
}

func TestSplit_RuneSizedForCJK(t *testing.T) {
	// 40 CJK runes per line; at size 60 the second line tips the buffer over.
	line := strings.Repeat("冷", 40)
	text := line + "\n" + line + "\n" + line

	chunks := Split(text, 60, 5)
	require.Len(t, chunks, 2)
	assert.Equal(t, line+"\n"+line, chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], strings.Repeat("冷", 5)))
}

func TestSplit_SingleLongLineWithoutNewlines(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := Split(text, 100, 20)
	// One oversized line is emitted whole, then its 20-rune tail remains.
	require.Len(t, chunks, 2)
	assert.Equal(t, text, chunks[0])
	assert.Equal(t, strings.Repeat("x", 20), chunks[1])
}

func TestSplit_DefaultsAppliedForNonPositiveSize(t *testing.T) {
	text := strings.Repeat("y", DefaultSize+10)
	chunks := Split(text, 0, DefaultOverlap)
	require.Len(t, chunks, 2)
	assert.Equal(t, text, chunks[0])
}
