// Package markdown renders post bodies to sanitized HTML as templ components.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/eringen/docket/slug"
)

var (
	engine = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)

	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	anchor := regexp.MustCompile(`^[A-Za-z0-9:_-]+$`)
	p.AllowAttrs("id").Matching(anchor).OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[A-Za-z0-9_+-]+$`)).OnElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^footnote(s|-ref|-backref)$`)).OnElements("a", "div")
	p.AllowAttrs("role").Matching(regexp.MustCompile(`^doc-(noteref|backlink|endnotes)$`)).OnElements("a", "div")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")
	return p
}

// headingIDs assigns heading ids with a slug.Slugger. Render and Headings
// both parse through it, so a body yields the same ids in either.
type headingIDs struct {
	slugger *slug.Slugger
}

func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	if kind != ast.KindHeading {
		return []byte(h.slugger.Slug(string(value)))
	}
	return []byte(h.slugger.Heading(string(value)))
}

func (h *headingIDs) Put(value []byte) {
	h.slugger.Reserve(string(value))
}

func newContext() parser.Context {
	return parser.NewContext(parser.WithIDs(&headingIDs{slugger: slug.NewSlugger()}))
}

// Heading is a level 2 or 3 heading of a body, with the id Render gives it.
type Heading struct {
	ID    string
	Title string
	Level int
}

// Headings parses body and returns its level 2 and 3 headings in document
// order. Headings inside blockquotes, lists and raw HTML blocks count the
// same way the rendered page does; code blocks hold none.
func Headings(body string) []Heading {
	src := []byte(body)
	doc := engine.Parser().Parse(text.NewReader(src), parser.WithContext(newContext()))

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if h.Level < 2 || h.Level > 3 {
			return ast.WalkSkipChildren, nil
		}
		id, _ := h.AttributeString("id")
		idBytes, _ := id.([]byte)
		title := slug.StripInline(headingText(h, src))
		if len(idBytes) > 0 && title != "" {
			headings = append(headings, Heading{ID: string(idBytes), Title: title, Level: h.Level})
		}
		return ast.WalkSkipChildren, nil
	})
	return headings
}

func headingText(h *ast.Heading, src []byte) string {
	lines := h.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
	}
	return strings.Join(parts, " ")
}

// Render converts body to HTML and writes the sanitized result to w.
func Render(w io.Writer, body string) error {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(body), &buf, parser.WithContext(newContext())); err != nil {
		return err
	}
	_, err := policy.SanitizeReader(&buf).WriteTo(w)
	return err
}

// HTML returns the sanitized HTML of body as a string.
func HTML(body string) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, body); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Markdown returns a templ.Component that renders body as HTML.
func Markdown(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Render(w, body)
	})
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
