package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/docket/content"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsURL resolves a site-relative link such as "/blog/law/x/" against base.
func AbsURL(base, link string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(link, "/")
}

// OGImageURL is the absolute URL of the Open Graph card of a post.
func OGImageURL(base, slug string) string {
	return AbsURL(base, "/og/"+url.PathEscape(slug))
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// FormatDate renders a post date for humans, e.g. "May 1, 2024".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// ISODate renders t as YYYY-MM-DD for <time datetime>.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func person(name string) map[string]string {
	return map[string]string{"@type": "Person", "name": name}
}

func marshalLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = person(cfg.Author)
	}
	return marshalLD(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post content.Post) string {
	postURL := BuildURL(cfg.URL, "blog", post.Category, post.Slug)
	data := map[string]any{
		"@context":       "https://schema.org",
		"@type":          "BlogPosting",
		"headline":       post.Title,
		"description":    post.Excerpt,
		"datePublished":  post.Date,
		"url":            postURL,
		"articleSection": post.Category,
		"image":          BuildURL(cfg.URL, "og", post.Slug),
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Author != "" {
		data["author"] = person(post.Author)
	} else if cfg.Author != "" {
		data["author"] = person(cfg.Author)
	}
	if len(post.Tags) > 0 {
		data["keywords"] = JoinTags(post.Tags)
	}
	return marshalLD(data)
}

// BreadcrumbJsonLD produces a Schema.org BreadcrumbList for a post page.
func BreadcrumbJsonLD(cfg SiteConfig, category content.Category, post content.Post) string {
	items := []map[string]any{
		{"@type": "ListItem", "position": 1, "name": "Blog", "item": BuildURL(cfg.URL, "blog")},
		{"@type": "ListItem", "position": 2, "name": category.Name, "item": BuildURL(cfg.URL, "blog", category.Slug)},
		{"@type": "ListItem", "position": 3, "name": post.Title, "item": BuildURL(cfg.URL, "blog", post.Category, post.Slug)},
	}
	return marshalLD(map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	})
}
