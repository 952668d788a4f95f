package docket

import (
	"encoding/xml"
	"time"

	"github.com/eringen/docket/content"
)

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	XMLNS    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Links    []atomLink  `xml:"link"`
	Author   *atomPerson `xml:"author,omitempty"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomText struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Links      []atomLink     `xml:"link"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Summary    atomText       `xml:"summary"`
	Author     *atomPerson    `xml:"author,omitempty"`
	Categories []atomCategory `xml:"category"`
}

// BuildAtom renders posts, which must be newest first, as an Atom 1.0
// feed. The feed's updated time is the newest post date, or the Unix
// epoch when there are no posts.
func BuildAtom(cfg SiteConfig, posts []content.Post) ([]byte, error) {
	updated := time.Unix(0, 0).UTC()
	if len(posts) > 0 {
		updated = posts[0].Published
	}
	feed := atomFeed{
		XMLNS:    "http://www.w3.org/2005/Atom",
		Title:    cfg.Name,
		Subtitle: cfg.Description,
		ID:       BuildURL(cfg.URL, ""),
		Updated:  updated.Format(time.RFC3339),
		Links: []atomLink{
			{Href: BuildURL(cfg.URL, ""), Rel: "alternate", Type: "text/html"},
			{Href: AbsURL(cfg.URL, "/atom.xml"), Rel: "self", Type: "application/atom+xml"},
		},
		Entries: make([]atomEntry, 0, len(posts)),
	}
	if author := cfg.DefaultAuthor(); author != "" {
		feed.Author = &atomPerson{Name: author}
	}
	for _, p := range posts {
		link := postURL(cfg.URL, p)
		entry := atomEntry{
			Title:     p.Title,
			ID:        link,
			Links:     []atomLink{{Href: link, Rel: "alternate", Type: "text/html"}},
			Published: p.Published.Format(time.RFC3339),
			Updated:   p.Published.Format(time.RFC3339),
			Summary:   atomText{Type: "text", Value: p.Excerpt},
		}
		if p.Author != "" {
			entry.Author = &atomPerson{Name: p.Author}
		}
		entry.Categories = append(entry.Categories, atomCategory{Term: p.Category})
		for _, t := range p.Tags {
			entry.Categories = append(entry.Categories, atomCategory{Term: t})
		}
		feed.Entries = append(feed.Entries, entry)
	}
	return marshalXML(feed)
}
