package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, body string) string {
	t.Helper()
	out, err := HTML(body)
	require.NoError(t, err)
	return out
}

func TestRenderHeadingIDs(t *testing.T) {
	out := render(t, "## Overview\n\ntext\n\n## Overview\n\n### Details\n")
	assert.Contains(t, out, `<h2 id="overview">Overview</h2>`)
	assert.Contains(t, out, `<h2 id="overview-1">Overview</h2>`)
	assert.Contains(t, out, `<h3 id="details">Details</h3>`)
}

func TestRenderIDsMatchExtractedHeadings(t *testing.T) {
	body := strings.Join([]string{
		"# Guide",
		"",
		"## Getting **Started**",
		"",
		"```md",
		"## Inside code",
		"```",
		"",
		"## Getting Started",
		"",
		"Setup",
		"-----",
		"",
		"### Café & Crème",
		"",
		"## ???",
		"",
		"#### Deep",
		"",
		"### Setup",
	}, "\n")

	out := render(t, body)
	headings := Headings(body)
	require.Len(t, headings, 6)
	for _, h := range headings {
		assert.Contains(t, out, `id="`+h.ID+`"`, "heading %q", h.Title)
	}
	assert.Equal(t, "getting-started", headings[0].ID)
	assert.Equal(t, "getting-started-1", headings[1].ID)
	assert.Equal(t, "cafe-and-creme", headings[3].ID)
	assert.Equal(t, "setup-1", headings[5].ID)
}

func TestHeadingsFollowBlockStructure(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Heading
	}{
		{
			name: "blockquote",
			body: "> ## Quoted\n\n## Quoted\n",
			want: []Heading{
				{ID: "quoted", Title: "Quoted", Level: 2},
				{ID: "quoted-1", Title: "Quoted", Level: 2},
			},
		},
		{
			name: "html block",
			body: "<Callout>\n## Note\n</Callout>\n\n## Note\n",
			want: []Heading{{ID: "note", Title: "Note", Level: 2}},
		},
		{
			name: "list item",
			body: "- ### Step\n\n### Step\n",
			want: []Heading{
				{ID: "step", Title: "Step", Level: 3},
				{ID: "step-1", Title: "Step", Level: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Headings(tt.body)
			assert.Equal(t, tt.want, got)

			out := render(t, tt.body)
			for _, h := range got {
				assert.Contains(t, out, `id="`+h.ID+`"`)
			}
		})
	}
}

func TestRenderSanitizes(t *testing.T) {
	out := render(t, "Hello <script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\" onclick=\"x()\">bad</a>\n")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "Hello")
}

func TestRenderGFM(t *testing.T) {
	body := "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n- [x] done\n\n```go\nfmt.Println(1)\n```\n"
	out := render(t, body)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<del>gone</del>")
	assert.Contains(t, out, `type="checkbox"`)
	assert.Contains(t, out, `<code class="language-go">`)
}

func TestRenderExternalLinks(t *testing.T) {
	out := render(t, "[home](/about/) and [away](https://example.com)\n")
	assert.Contains(t, out, `href="/about/"`)
	assert.NotContains(t, out, `href="/about/" rel="nofollow"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown("**bold**").Render(context.Background(), &buf))
	assert.Equal(t, "<p><strong>bold</strong></p>\n", buf.String())
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"/images/a.png", "/images/a.png"},
		{"#section", "#section"},
		{"https://example.com/a?b=1&c=2", "https://example.com/a?b=1&amp;c=2"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"javascript:alert(1)", ""},
		{"JaVaScRiPt:alert(1)", ""},
		{"data:text/html;base64,xx", ""},
		{"relative/path", ""},
		{"/a\"onmouseover=\"x", "/a&#34;onmouseover=&#34;x"},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
