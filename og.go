package docket

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/docket/content"
	"github.com/eringen/docket/ogimage"
)

func cardFor(p content.Post) ogimage.Card {
	return ogimage.Card{
		Title:    p.Title,
		Excerpt:  p.Excerpt,
		Author:   p.Author,
		Date:     p.Published,
		Category: p.Category,
	}
}

// renderOG draws the preview image for p with the process-wide assets.
func (a *App) renderOG(p content.Post) ([]byte, error) {
	assets, err := a.og.Load()
	if err != nil {
		return nil, err
	}
	return ogimage.NewRenderer(assets).RenderPNG(cardFor(p))
}

func (a *App) handleOGImage(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Posts.FindBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return a.notFound(c)
		}
		return err
	}

	start := time.Now()
	data, err := a.renderOG(post)
	a.metrics.ogDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		a.metrics.ogRenders.WithLabelValues("error").Inc()
		a.Logger.ErrorContext(ctx, "render og image", "slug", post.Slug, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	a.metrics.ogRenders.WithLabelValues("ok").Inc()

	return c.Blob(http.StatusOK, "image/png", data)
}
