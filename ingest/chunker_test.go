package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	chunks := SplitText("  hello world  ", 50, 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitText_EmptyInput(t *testing.T) {
	assert.Empty(t, SplitText("", 100, 10))
	assert.Empty(t, SplitText("   \n\t  ", 100, 10))
}

func TestSplitText_PrefersWordBoundary(t *testing.T) {
	chunks := SplitText("alpha beta gamma delta", 12, 0)

	require.Equal(t, []string{"alpha beta", "gamma delta"}, chunks)
}

func TestSplitText_PrefersParagraphBoundary(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph text."
	chunks := SplitText(text, 30, 0)

	require.Equal(t, []string{"First paragraph here.", "Second paragraph text."}, chunks)
}

func TestSplitText_HardCutOverlap(t *testing.T) {
	// No natural boundaries at all, so every cut is a hard cut and the
	// overlap is exact: the suffix of each chunk is the prefix of the next.
	chunks := SplitText("0123456789ABCDEFGHIJ", 10, 4)

	require.Equal(t, []string{"0123456789", "6789ABCDEF", "CDEFGHIJ"}, chunks)
	for i := 0; i < len(chunks)-1; i++ {
		suffix := chunks[i][len(chunks[i])-4:]
		assert.True(t, strings.HasPrefix(chunks[i+1], suffix),
			"chunk %d suffix %q should start chunk %d", i, suffix, i+1)
	}
}

func TestSplitText_NoChunkEmptyOrOversized(t *testing.T) {
	text := strings.Repeat("Users may transfer up to $500 per day. ", 40)
	chunks := SplitText(text, 100, 20)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk), "chunk %d is empty", i)
		assert.LessOrEqual(t, len([]rune(chunk)), 100, "chunk %d exceeds the size limit", i)
	}
}

func TestSplitText_CoverageWithoutOverlap(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 30)
	chunks := SplitText(text, 120, 0)

	// With zero overlap the chunks partition the text, so stripping all
	// whitespace from both sides must give back the same characters.
	stripped := func(s string) string {
		return strings.Join(strings.Fields(s), "")
	}
	assert.Equal(t, stripped(text), stripped(strings.Join(chunks, " ")))
}
