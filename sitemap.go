package docket

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/docket/content"
)

// Change frequencies used in the sitemap.
const (
	ChangeDaily   = "daily"
	ChangeWeekly  = "weekly"
	ChangeMonthly = "monthly"
)

// SitemapEntry is one <url> of the sitemap.
type SitemapEntry struct {
	URL             string
	LastModified    time.Time // zero when unknown
	ChangeFrequency string
	Priority        float64
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapEntries lists every public page: home, the blog index, the
// configured static pages, each category, each tag and each post.
func SitemapEntries(cfg SiteConfig, posts []content.Post, categories []content.Category, tags []content.TagCount) []SitemapEntry {
	base := cfg.URL
	var newest time.Time
	if len(posts) > 0 {
		newest = posts[0].Published
	}

	entries := []SitemapEntry{
		{URL: BuildURL(base, ""), LastModified: newest, ChangeFrequency: ChangeDaily, Priority: 1.0},
		{URL: BuildURL(base, "blog"), LastModified: newest, ChangeFrequency: ChangeDaily, Priority: 0.9},
	}
	for _, page := range cfg.StaticPages {
		page = strings.Trim(strings.TrimSpace(page), "/")
		if page == "" {
			continue
		}
		entries = append(entries, SitemapEntry{URL: BuildURL(base, page), ChangeFrequency: ChangeMonthly, Priority: 0.8})
	}
	for _, c := range categories {
		entries = append(entries, SitemapEntry{
			URL:             BuildURL(base, "blog", c.Slug),
			LastModified:    newestIn(content.FilterByCategory(posts, c.Slug)),
			ChangeFrequency: ChangeWeekly,
			Priority:        0.7,
		})
	}
	for _, t := range tags {
		entries = append(entries, SitemapEntry{
			URL:             BuildURL(base, "blog", "tag", t.Slug),
			LastModified:    newestIn(content.FilterByTag(posts, t.Slug)),
			ChangeFrequency: ChangeWeekly,
			Priority:        0.5,
		})
	}
	for _, p := range posts {
		entries = append(entries, SitemapEntry{
			URL:             postURL(base, p),
			LastModified:    p.Published,
			ChangeFrequency: ChangeMonthly,
			Priority:        0.8,
		})
	}
	return entries
}

func newestIn(posts []content.Post) time.Time {
	var t time.Time
	for _, p := range posts {
		if p.Published.After(t) {
			t = p.Published
		}
	}
	return t
}

// BuildSitemap renders entries as a sitemaps.org urlset.
func BuildSitemap(entries []SitemapEntry) ([]byte, error) {
	urls := make([]sitemapURL, 0, len(entries))
	for _, e := range entries {
		u := sitemapURL{
			Loc:        e.URL,
			ChangeFreq: e.ChangeFrequency,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
		if !e.LastModified.IsZero() {
			u.LastMod = e.LastModified.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	return marshalXML(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}
