package docket

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/eringen/docket/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	DCNS    string     `xml:"xmlns:dc,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Creator     string   `xml:"dc:creator,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        rssGUID  `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// postURL is the absolute URL of a post page.
func postURL(base string, p content.Post) string {
	return BuildURL(base, "blog", p.Category, p.Slug)
}

// BuildRSS renders posts, which must be newest first, as an RSS 2.0 feed.
// The output depends only on its arguments.
func BuildRSS(cfg SiteConfig, posts []content.Post) ([]byte, error) {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := postURL(cfg.URL, p)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			Creator:     p.Author,
			Categories:  append([]string{p.Category}, p.Tags...),
			PubDate:     p.Published.Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: true, Value: link},
		})
	}
	channel := rssChannel{
		Title:       cfg.Name,
		Link:        BuildURL(cfg.URL, ""),
		Description: cfg.Description,
		Language:    "en",
		AtomLink:    atomLink{Href: AbsURL(cfg.URL, "/feed.xml"), Rel: "self", Type: "application/rss+xml"},
		Items:       items,
	}
	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].Published.Format(time.RFC1123Z)
	}
	return marshalXML(rssXML{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		DCNS:    "http://purl.org/dc/elements/1.1/",
		Channel: channel,
	})
}

func marshalXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
