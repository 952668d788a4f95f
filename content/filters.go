package content

import (
	"cmp"
	"net/url"
	"slices"
	"strings"

	"github.com/eringen/docket/slug"
)

// SortPosts orders posts newest first, breaking ties by category and slug.
func SortPosts(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
}

// FilterByCategory keeps posts of category, compared case-insensitively.
func FilterByCategory(posts []Post, category string) []Post {
	category = NormalizeCategory(category)
	var out []Post
	for _, p := range posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// FilterByTag keeps posts carrying a tag whose slug equals tagSlug.
func FilterByTag(posts []Post, tagSlug string) []Post {
	var out []Post
	for _, p := range posts {
		for _, t := range p.Tags {
			if slug.Slugify(t) == tagSlug {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// DistinctTags returns every tag used by posts, lower-cased and escaped
// for use in URL paths, sorted and without duplicates.
func DistinctTags(posts []Post) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			set[url.PathEscape(strings.ToLower(t))] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// CountTags groups tags by slug and counts the posts carrying each,
// most used first.
func CountTags(posts []Post) []TagCount {
	index := make(map[string]int)
	var counts []TagCount
	for _, p := range posts {
		seen := make(map[string]bool)
		for _, t := range p.Tags {
			s := slug.Slugify(t)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			if i, ok := index[s]; ok {
				counts[i].Count++
				continue
			}
			index[s] = len(counts)
			counts = append(counts, TagCount{Name: strings.ToLower(t), Slug: s, Count: 1})
		}
	}
	slices.SortStableFunc(counts, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
	return counts
}

// TagName returns the display name of the tag with slug s, or "" when no
// post carries it.
func TagName(posts []Post, s string) string {
	for _, p := range posts {
		for _, t := range p.Tags {
			if slug.Slugify(t) == s {
				return strings.ToLower(t)
			}
		}
	}
	return ""
}

// FindBySlug returns the first post with the given slug.
func FindBySlug(posts []Post, s string) (Post, bool) {
	for _, p := range posts {
		if p.Slug == s {
			return p, true
		}
	}
	return Post{}, false
}

// RelatedPosts returns up to limit posts sharing at least one tag with
// current, keeping the order of posts.
func RelatedPosts(current Post, posts []Post, limit int) []Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []Post
	for _, p := range posts {
		if p.Slug == current.Slug && p.Category == current.Category {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[strings.ToLower(strings.TrimSpace(t))]; ok {
				related = append(related, p)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// Adjacent returns the posts published right after (newer) and right
// before (older) current within posts, which must be in canonical order.
func Adjacent(posts []Post, current Post) (newer, older *Post) {
	for i, p := range posts {
		if p.Slug != current.Slug || p.Category != current.Category {
			continue
		}
		if i > 0 {
			n := posts[i-1]
			newer = &n
		}
		if i+1 < len(posts) {
			o := posts[i+1]
			older = &o
		}
		break
	}
	return newer, older
}

// NormalizeCategory returns the canonical, lower-case form of a category.
func NormalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
