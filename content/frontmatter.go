package content

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// ErrMalformed is returned when a metadata block is present but cannot be decoded.
var ErrMalformed = errors.New("content: malformed front matter")

// dateLayouts are tried in order when a date is given as a string.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Meta holds the decoded front matter of one file.
type Meta map[string]any

// ParseFrontMatter splits r into its metadata block and body. YAML (---),
// TOML (+++) and JSON (;;;) blocks are recognized. Input without a block
// yields an empty Meta and the whole input as body.
func ParseFrontMatter(r io.Reader) (Meta, string, error) {
	meta := Meta{}
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return meta, string(body), nil
}

// ParseFile reads and parses the file at path. A missing file is reported
// with fs.ErrNotExist in the error chain.
func ParseFile(path string) (Meta, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	meta, body, err := ParseFrontMatter(f)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	return meta, body, nil
}

// String returns the first non-empty value among keys, formatted as text.
func (m Meta) String(keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case time.Time:
			return formatDate(v)
		default:
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// Strings returns key as a list. Both YAML sequences and comma-separated
// strings are accepted; blank entries are dropped.
func (m Meta) Strings(key string) []string {
	var raw []string
	switch v := m[key].(type) {
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if item != nil {
				raw = append(raw, fmt.Sprint(item))
			}
		}
	case string:
		raw = strings.Split(v, ",")
	}
	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Time parses key as a date. It reports false when the key is absent or
// not a recognizable date.
func (m Meta) Time(key string) (time.Time, bool) {
	switch v := m[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		return parseDate(v)
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
