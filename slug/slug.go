// Package slug turns human text such as titles, tags and headings into
// URL-safe identifiers. The same algorithm backs tag URLs, heading anchors
// extracted for tables of contents, and the ids the Markdown renderer puts
// on heading elements, so all three always agree.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonWord matches everything except ASCII word characters, whitespace and hyphens.
	nonWord = regexp.MustCompile(`[^a-z0-9_\s-]+`)
	// separators matches whitespace and underscore runs.
	separators = regexp.MustCompile(`[\s_]+`)
	// multipleHyphens matches multiple consecutive hyphens.
	multipleHyphens = regexp.MustCompile(`-{2,}`)

	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	reLink       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reInlineCode = regexp.MustCompile("`([^`]*)`")
	reStrong     = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	reEmphasis   = regexp.MustCompile(`\*([^*]+)\*`)
	reStrike     = regexp.MustCompile(`~~(.+?)~~`)
	reTag        = regexp.MustCompile(`<[^>]+>`)
)

// Slugify converts s to a URL-safe slug. Diacritics are stripped, the
// result is lower-case, "&" becomes "and", and only ASCII letters, digits
// and single inner hyphens remain. Input made only of symbols yields "".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, strings.ToLower(result))
	result = strings.ReplaceAll(result, "&", "and")
	result = nonWord.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(strings.TrimSpace(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is already in canonical slug form.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}

// StripInline removes inline Markdown syntax (links, images, code spans,
// emphasis, raw tags) from a single line, keeping the visible text.
func StripInline(s string) string {
	s = reImage.ReplaceAllString(s, "$1")
	s = reLink.ReplaceAllString(s, "$1")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reStrong.ReplaceAllString(s, "$2")
	s = reEmphasis.ReplaceAllString(s, "$1")
	s = reStrike.ReplaceAllString(s, "$1")
	s = reTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Fallback is used when a heading slugifies to nothing.
const Fallback = "section"

// Slugger hands out unique slugs within one document. The first occurrence
// of a text gets the bare slug; repeats get "-1", "-2", ... suffixes.
// The zero value is ready to use. A Slugger is not safe for concurrent use
// and must not be shared between documents.
type Slugger struct {
	seen map[string]int
}

// NewSlugger returns an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns a slug for text that has not been returned before by s.
func (s *Slugger) Slug(text string) string {
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	base := Slugify(text)
	if base == "" {
		base = Fallback
	}
	id := base
	if _, ok := s.seen[base]; ok {
		for {
			s.seen[base]++
			id = base + "-" + strconv.Itoa(s.seen[base])
			if _, taken := s.seen[id]; !taken {
				break
			}
		}
	}
	s.seen[id] = 0
	return id
}

// Heading strips inline Markdown from a raw heading line and slugs it.
func (s *Slugger) Heading(raw string) string {
	return s.Slug(StripInline(raw))
}

// Reserve marks id as taken without generating anything.
func (s *Slugger) Reserve(id string) {
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	if _, ok := s.seen[id]; !ok {
		s.seen[id] = 0
	}
}
