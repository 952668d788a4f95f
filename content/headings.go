package content

import "github.com/eringen/docket/markdown"

// ExtractHeadings returns the level 2 and 3 headings of a Markdown body in
// document order, with the ids the renderer puts on them.
func ExtractHeadings(body string) []Heading {
	found := markdown.Headings(body)
	if len(found) == 0 {
		return nil
	}
	headings := make([]Heading, 0, len(found))
	for _, h := range found {
		headings = append(headings, Heading{ID: h.ID, Title: h.Title, Level: h.Level})
	}
	return headings
}
