package docket

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/docket/content"
)

// ExportResult lists what Export wrote.
type ExportResult struct {
	Feeds  []string
	Images int
}

// Export writes the feeds, the sitemap and one Open Graph image per post
// into dir, so they can be served from a CDN without running the server.
// When two posts share a slug only the newest gets an image, matching
// what /og/:slug serves.
func (a *App) Export(ctx context.Context, dir string) (ExportResult, error) {
	var res ExportResult
	if err := a.Init(); err != nil {
		return res, err
	}
	if err := os.MkdirAll(filepath.Join(dir, "og"), 0o755); err != nil {
		return res, fmt.Errorf("docket: create output dir: %w", err)
	}

	posts := a.Posts.ListPosts(ctx)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	rss, err := BuildRSS(a.Config, posts)
	if err != nil {
		return res, err
	}
	atom, err := BuildAtom(a.Config, posts)
	if err != nil {
		return res, err
	}
	entries := SitemapEntries(a.Config, posts, a.Posts.ListCategories(ctx), content.CountTags(posts))
	sitemap, err := BuildSitemap(entries)
	if err != nil {
		return res, err
	}
	for name, data := range map[string][]byte{"feed.xml": rss, "atom.xml": atom, "sitemap.xml": sitemap} {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return res, fmt.Errorf("docket: write %s: %w", name, err)
		}
	}
	res.Feeds = []string{"atom.xml", "feed.xml", "sitemap.xml"}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.Slug]; ok {
			continue
		}
		seen[p.Slug] = struct{}{}
		res.Images++
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := a.renderOG(p)
			if err != nil {
				return fmt.Errorf("docket: render og image %s: %w", p.Slug, err)
			}
			return os.WriteFile(filepath.Join(dir, "og", p.Slug+".png"), data, 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}
