// Package content indexes the blog's flat content files. It parses front
// matter, derives categories and tags from the directory tree, estimates
// reading time and extracts headings for in-page navigation.
package content

import (
	"net/url"
	"time"
)

// Post is the normalized, in-memory representation of one content file.
// Posts are values: they are built from disk on each listing and never
// mutated afterwards.
type Post struct {
	Title         string
	Date          string    // ISO-8601 as written in the front matter
	Published     time.Time // Date parsed, used for ordering
	Author        string
	Category      string // lower-cased directory name
	Slug          string // file name without extension
	Excerpt       string
	Tags          []string
	FeaturedImage string
	ReadingTime   int // minutes, always >= 1
	Content       string
	Headings      []Heading // only populated by GetPost
	Path          string
	ModTime       time.Time
}

// Link returns the site-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + url.PathEscape(p.Category) + "/" + url.PathEscape(p.Slug) + "/"
}

// Category describes one directory under the content root.
type Category struct {
	Name        string // display form, e.g. "Crypto"
	Slug        string // lower-case directory name
	Count       int    // files with a post extension, valid or not
	Description string
}

// Link returns the site-relative URL of the category listing.
func (c Category) Link() string {
	return "/blog/" + url.PathEscape(c.Slug) + "/"
}

// Heading is one section heading of a post body.
type Heading struct {
	ID    string
	Title string
	Level int
}

// TagCount pairs a tag with the number of posts carrying it.
type TagCount struct {
	Name  string
	Slug  string
	Count int
}

// Link returns the site-relative URL of the tag listing.
func (t TagCount) Link() string {
	return "/blog/tag/" + t.Slug + "/"
}
