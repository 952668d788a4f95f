package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/docket/content"
)

var testSite = SiteConfig{Name: "Counsel Notes", URL: "https://example.com", Author: "Jane", Year: 2024}

func samplePost() content.Post {
	return content.Post{
		Title:         "Smart <Contracts>",
		Date:          "2024-03-10",
		Published:     time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Author:        "Jane Counsel",
		Category:      "law",
		Slug:          "contracts",
		Excerpt:       "Are they enforceable?",
		Tags:          []string{"law", "smart contracts"},
		FeaturedImage: "javascript:alert(1)",
		ReadingTime:   3,
		Content:       "## Formation\n\nOffer & acceptance.\n",
		Headings:      []content.Heading{{ID: "formation", Title: "Formation", Level: 2}},
	}
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestPostPage(t *testing.T) {
	post := samplePost()
	older := content.Post{Title: "Older", Category: "law", Slug: "older"}
	out := renderString(t, Post(PostPage{
		Site:     testSite,
		Meta:     PageMeta{Title: post.Title, JSONLD: BlogPostingJsonLD(testSite, post)},
		Post:     post,
		Category: content.NewCategory("law", 2),
		Older:    &older,
	}))

	assert.Contains(t, out, "Smart &lt;Contracts&gt;")
	assert.Contains(t, out, `<h2 id="formation">Formation</h2>`)
	assert.Contains(t, out, `href="#formation"`)
	assert.Contains(t, out, `href="/blog/law/older/"`)
	assert.Contains(t, out, `application/ld+json`)
	assert.NotContains(t, out, "javascript:alert")
	assert.Contains(t, out, "3 min read")
}

func TestListAndHomePages(t *testing.T) {
	posts := []content.Post{samplePost()}
	tags := content.CountTags(posts)

	out := renderString(t, List(ListPage{Site: testSite, Heading: "Law", Posts: posts, Tags: tags, ActiveTag: "law"}))
	assert.Contains(t, out, "<h1>Law</h1>")
	assert.Contains(t, out, `href="/blog/law/contracts/"`)
	assert.Contains(t, out, `class="tag tag-active" href="/blog/tag/law/"`)

	out = renderString(t, List(ListPage{Site: testSite, Heading: "Empty"}))
	assert.Contains(t, out, "No posts found.")

	out = renderString(t, Home(HomePage{Site: testSite, Posts: posts, Categories: []content.Category{content.NewCategory("law", 1)}}))
	assert.Contains(t, out, "Counsel Notes")
	assert.Contains(t, out, `href="/blog/law/"`)
}

func TestTagsContactAndErrorPages(t *testing.T) {
	out := renderString(t, Tags(TagsPage{Site: testSite, Tags: []content.TagCount{{Name: "web dev", Slug: "web-dev", Count: 2}}}))
	assert.Contains(t, out, `href="/blog/tag/web-dev/"`)

	out = renderString(t, Contact(ContactPage{
		Site:      testSite,
		CSRFToken: "tok",
		Form:      ContactForm{Name: "A"},
		Errors:    map[string]string{"name": "Name must be at least 2 characters."},
	}))
	assert.Contains(t, out, `value="tok"`)
	assert.Contains(t, out, "Name must be at least 2 characters.")

	out = renderString(t, Contact(ContactPage{Site: testSite, Sent: true}))
	assert.Contains(t, out, "your message has been sent")

	assert.Contains(t, renderString(t, NotFound(ErrorPage{Site: testSite})), "Page not found")
	assert.Contains(t, renderString(t, ServerError(ErrorPage{Site: testSite})), "Something went wrong")
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"blog"}, "https://example.com/blog/"},
		{"https://example.com/", []string{"blog", "law", "x"}, "https://example.com/blog/law/x/"},
		{"https://example.com/sub", []string{"blog"}, "https://example.com/sub/blog/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
	assert.Equal(t, "https://example.com/blog/", AbsURL("https://example.com/", "/blog/"))
}

func TestJsonLD(t *testing.T) {
	var site map[string]any
	require.NoError(t, json.Unmarshal([]byte(WebsiteJsonLD(testSite)), &site))
	assert.Equal(t, "WebSite", site["@type"])

	var post map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(testSite, samplePost())), &post))
	assert.Equal(t, "https://example.com/blog/law/contracts/", post["url"])
	assert.Equal(t, "law, smart contracts", post["keywords"])
	assert.Equal(t, "Jane Counsel", post["author"].(map[string]any)["name"])

	crumbs := BreadcrumbJsonLD(testSite, content.NewCategory("law", 1), samplePost())
	assert.True(t, strings.Contains(crumbs, `"BreadcrumbList"`))
}
