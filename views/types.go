package views

import "github.com/eringen/docket/content"

// SiteConfig is the site identity every page renders in its chrome.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	Year        int
	Nav         []NavLink
}

// NavLink is one entry of the header navigation.
type NavLink struct {
	Title string
	Href  string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // absolute og:image URL, optional
	JSONLD      string
	Breadcrumb  string // BreadcrumbList JSON-LD, post pages only
}

// HomePage is the landing page.
type HomePage struct {
	Site       SiteConfig
	Meta       PageMeta
	Posts      []content.Post
	Categories []content.Category
	Tags       []content.TagCount
}

// ListPage renders a list of posts: the blog index, one category or one tag.
type ListPage struct {
	Site      SiteConfig
	Meta      PageMeta
	Heading   string
	Intro     string
	Posts     []content.Post
	Tags      []content.TagCount
	ActiveTag string
}

// TagsPage is the tag index.
type TagsPage struct {
	Site SiteConfig
	Meta PageMeta
	Tags []content.TagCount
}

// PostPage renders one post with its table of contents.
type PostPage struct {
	Site     SiteConfig
	Meta     PageMeta
	Post     content.Post
	Category content.Category
	Related  []content.Post
	Newer    *content.Post
	Older    *content.Post
}

// ContactForm echoes submitted values back into the form.
type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactPage is the contact form with its post/redirect/get flash state.
type ContactPage struct {
	Site      SiteConfig
	Meta      PageMeta
	CSRFToken string
	Form      ContactForm
	Errors    map[string]string
	Flash     string
	Sent      bool
}

// ErrorPage is used for 404 and 500 responses.
type ErrorPage struct {
	Site SiteConfig
	Meta PageMeta
}
