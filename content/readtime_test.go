package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{1, 1},
		{200, 1},
		{201, 2},
		{400, 2},
		{1001, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadingTime(words(tt.words)), "%d words", tt.words)
	}
}

func TestWordCountIgnoresPunctuation(t *testing.T) {
	assert.Equal(t, 3, WordCount("one - two *** three ---"))
	assert.Equal(t, 0, WordCount("  \n\t "))
}

func TestPlainText(t *testing.T) {
	body := `import Chart from "./chart"
export const meta = {}

# Heading

Some **bold** and _plain_ text with a [link](https://x.test).

` + "```js\nconsole.log('hidden')\n```" + `

> quoted line

- first
- second

---
`
	got := PlainText(body)
	assert.Equal(t, "Heading Some bold and _plain_ text with a link. quoted line first second", got)
	assert.NotContains(t, got, "console")
	assert.NotContains(t, got, "import")
}

func TestExcerpt(t *testing.T) {
	short := "A short body."
	assert.Equal(t, short, Excerpt(short, ExcerptLength))

	long := strings.Repeat("abcd ", 100)
	got := Excerpt(long, ExcerptLength)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, utf8.RuneCountInString(strings.TrimSuffix(got, "...")), ExcerptLength)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello...", Truncate("hello world", 6))
	assert.Equal(t, "hello world", Truncate("hello world", 11))
	assert.Equal(t, "héllo", Truncate("héllo", 5))
	assert.Equal(t, "hé...", Truncate("héllo", 2))
	assert.Equal(t, "anything", Truncate("anything", 0))
}
