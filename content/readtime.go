package content

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/eringen/docket/slug"
)

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

// ExcerptLength is the rune budget of excerpts derived from the body.
const ExcerptLength = 160

var (
	reMDXStatement = regexp.MustCompile(`^(import|export)\s`)
	reListMarker   = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)
	reHeading      = regexp.MustCompile(`^\s{0,3}#{1,6}\s*`)
	reQuote        = regexp.MustCompile(`^\s*>\s?`)
	reRule         = regexp.MustCompile(`^\s*([-*_=]\s*){3,}$`)
)

// WordCount counts whitespace-separated tokens containing at least one
// letter or digit.
func WordCount(body string) int {
	n := 0
	for _, field := range strings.Fields(body) {
		if strings.IndexFunc(field, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			n++
		}
	}
	return n
}

// ReadingTime estimates minutes to read body, rounded up, never below 1.
func ReadingTime(body string) int {
	minutes := (WordCount(body) + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// PlainText reduces a Markdown/MDX body to readable prose: code blocks,
// MDX import/export statements, block markers and inline syntax are
// dropped and whitespace is collapsed.
func PlainText(body string) string {
	var (
		b     strings.Builder
		fence string
	)
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if f := openingFence(trimmed); f != "" {
			fence = f
			continue
		}
		if trimmed == "" || reMDXStatement.MatchString(trimmed) || reRule.MatchString(trimmed) {
			continue
		}
		line = reHeading.ReplaceAllString(line, "")
		line = reQuote.ReplaceAllString(line, "")
		line = reListMarker.ReplaceAllString(line, "")
		line = slug.StripInline(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Excerpt derives a plain-text excerpt of at most limit runes from body,
// marking truncation with "...".
func Excerpt(body string, limit int) string {
	return Truncate(PlainText(body), limit)
}

// Truncate hard-cuts s to limit runes and appends "..." when anything was
// removed.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return strings.TrimRightFunc(string(r[:limit]), unicode.IsSpace) + "..."
}
