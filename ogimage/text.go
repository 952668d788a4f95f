package ogimage

import (
	"strings"

	"golang.org/x/image/font"
)

// ExcerptLimit is the number of runes of the excerpt kept on a card.
const ExcerptLimit = 220

const ellipsis = "..."

// TruncateExcerpt keeps the first ExcerptLimit runes of s and appends an
// ellipsis when anything was cut.
func TruncateExcerpt(s string) string {
	r := []rune(s)
	if len(r) <= ExcerptLimit {
		return s
	}
	return string(r[:ExcerptLimit]) + ellipsis
}

// Wrap breaks text into at most maxLines lines no wider than width pixels
// when drawn with face. Words wider than a line are split; text that does
// not fit ends with an ellipsis.
func Wrap(face font.Face, text string, width, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	fits := func(s string) bool {
		return font.MeasureString(face, s).Ceil() <= width
	}

	var lines []string
	line := ""
	words := strings.Fields(text)
	for i := 0; i < len(words); i++ {
		w := words[i]
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if fits(candidate) {
			line = candidate
			continue
		}
		if line == "" {
			head, tail := splitWord(w, fits)
			line = head
			if tail != "" {
				words[i] = tail
				i--
			}
			lines = append(lines, line)
			line = ""
		} else {
			lines = append(lines, line)
			line = ""
			i--
		}
		if len(lines) == maxLines && i+1 < len(words) {
			return ellipsize(lines, fits)
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// splitWord returns the longest prefix of w that fits, at least one rune.
func splitWord(w string, fits func(string) bool) (string, string) {
	r := []rune(w)
	n := 1
	for n < len(r) && fits(string(r[:n+1])) {
		n++
	}
	return string(r[:n]), string(r[n:])
}

// ellipsize marks the last line as cut, shortening it until it fits.
func ellipsize(lines []string, fits func(string) bool) []string {
	last := []rune(lines[len(lines)-1])
	for len(last) > 0 && !fits(string(last)+ellipsis) {
		last = last[:len(last)-1]
	}
	lines[len(lines)-1] = strings.TrimRight(string(last), " ") + ellipsis
	return lines
}
