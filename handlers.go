package docket

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/eringen/docket/content"
	"github.com/eringen/docket/slug"
	"github.com/eringen/docket/views"
)

const (
	homePostLimit = 10
	homeTagLimit  = 20
	relatedLimit  = 3
	defaultOGType = "website"
)

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Year:        time.Now().Year(),
		Nav: []views.NavLink{
			{Title: "Blog", Href: "/blog/"},
			{Title: "Tags", Href: "/blog/tags/"},
			{Title: "Contact", Href: "/contact/"},
		},
	}
}

func (a *App) pageMeta(title, description string, segments ...string) views.PageMeta {
	if description == "" {
		description = a.Config.Description
	}
	return views.PageMeta{
		Title:       title,
		Description: description,
		URL:         BuildURL(a.Config.URL, segments...),
		OGType:      defaultOGType,
	}
}

func (a *App) notFound(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-store")
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorPage{
		Site: a.site(),
		Meta: views.PageMeta{Title: "Not found"},
	}))
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	posts := a.Posts.ListPosts(ctx)
	tags := content.CountTags(posts)

	meta := a.pageMeta("", "", "")
	meta.JSONLD = views.WebsiteJsonLD(a.site())
	return Render(c, a.Views.Home(views.HomePage{
		Site:       a.site(),
		Meta:       meta,
		Posts:      posts[:min(len(posts), homePostLimit)],
		Categories: a.Posts.ListCategories(ctx),
		Tags:       tags[:min(len(tags), homeTagLimit)],
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	posts := a.Posts.ListPosts(c.Request().Context())
	page := views.ListPage{
		Site:    a.site(),
		Meta:    a.pageMeta("Blog", "", "blog"),
		Heading: "All posts",
		Tags:    content.CountTags(posts),
		Posts:   posts,
	}
	if tag := c.QueryParam("tag"); tag != "" {
		page.ActiveTag = slug.Slugify(tag)
		page.Posts = content.FilterByTag(posts, page.ActiveTag)
	}
	return Render(c, a.Views.Blog(page))
}

func (a *App) handleTags(c echo.Context) error {
	posts := a.Posts.ListPosts(c.Request().Context())
	return Render(c, a.Views.Tags(views.TagsPage{
		Site: a.site(),
		Meta: a.pageMeta("Tags", "", "blog", "tags"),
		Tags: content.CountTags(posts),
	}))
}

func (a *App) handleTag(c echo.Context) error {
	tagSlug := slug.Slugify(c.Param("tag"))
	if tagSlug == "" {
		return a.notFound(c)
	}
	posts := a.Posts.PostsByTag(c.Request().Context(), tagSlug)
	if len(posts) == 0 {
		return a.notFound(c)
	}
	name := content.TagName(posts, tagSlug)
	return Render(c, a.Views.Tag(views.ListPage{
		Site:      a.site(),
		Meta:      a.pageMeta("Posts tagged "+name, "", "blog", "tag", tagSlug),
		Heading:   "Tagged: " + name,
		Posts:     posts,
		ActiveTag: tagSlug,
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Posts.PostsByCategory(ctx, c.Param("category"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return a.notFound(c)
		}
		return err
	}
	cat := content.NewCategory(content.NormalizeCategory(c.Param("category")), len(posts))
	for _, existing := range a.Posts.ListCategories(ctx) {
		if existing.Slug == cat.Slug {
			cat = existing
			break
		}
	}
	return Render(c, a.Views.Category(views.ListPage{
		Site:    a.site(),
		Meta:    a.pageMeta(cat.Name, cat.Description, "blog", cat.Slug),
		Heading: cat.Name,
		Intro:   cat.Description,
		Posts:   posts,
		Tags:    content.CountTags(posts),
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Posts.GetPost(ctx, c.Param("category"), c.Param("slug"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return a.notFound(c)
		}
		return err
	}
	all := a.Posts.ListPosts(ctx)
	newer, older := content.Adjacent(all, post)

	site := a.site()
	meta := a.pageMeta(post.Title, post.Excerpt, "blog", post.Category, post.Slug)
	meta.OGType = "article"
	meta.Image = views.OGImageURL(a.Config.URL, post.Slug)
	category := content.NewCategory(post.Category, 0)
	meta.JSONLD = views.BlogPostingJsonLD(site, post)
	meta.Breadcrumb = views.BreadcrumbJsonLD(site, category, post)

	return Render(c, a.Views.Post(views.PostPage{
		Site:     site,
		Meta:     meta,
		Post:     post,
		Category: category,
		Related:  content.RelatedPosts(post, all, relatedLimit),
		Newer:    newer,
		Older:    older,
	}))
}

func (a *App) handleRSS(c echo.Context) error {
	data, err := BuildRSS(a.Config, a.Posts.ListPosts(c.Request().Context()))
	if err != nil {
		return a.feedError(c, "rss", err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", data)
}

func (a *App) handleAtom(c echo.Context) error {
	data, err := BuildAtom(a.Config, a.Posts.ListPosts(c.Request().Context()))
	if err != nil {
		return a.feedError(c, "atom", err)
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", data)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts := a.Posts.ListPosts(ctx)
	entries := SitemapEntries(a.Config, posts, a.Posts.ListCategories(ctx), content.CountTags(posts))
	data, err := BuildSitemap(entries)
	if err != nil {
		return a.feedError(c, "sitemap", err)
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", data)
}

func (a *App) feedError(c echo.Context, feed string, err error) error {
	a.metrics.feedFailures.WithLabelValues(feed).Inc()
	a.Logger.ErrorContext(c.Request().Context(), "generate feed", "feed", feed, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError)
}

// handleRobots serves robots.txt from the static directory when present,
// otherwise a generated one pointing at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "robots.txt")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return c.File(path)
	}
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n\n")
	b.WriteString("Sitemap: " + AbsURL(a.Config.URL, "/sitemap.xml") + "\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleStylesheet(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "docket.css")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return c.File(path)
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", defaultStylesheet)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.notFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Response().Header().Set("Cache-Control", "no-store")
		if !ok || he.Internal != nil {
			a.Logger.ErrorContext(c.Request().Context(), "server error",
				"method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		}
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorPage{
			Site: a.site(),
			Meta: views.PageMeta{Title: "Server error"},
		}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func (a *App) metricsHandler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.registry})
}
