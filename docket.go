// Package docket serves a blog from a directory of Markdown/MDX files.
// It indexes posts by category and tag, renders pages, RSS/Atom feeds and
// a sitemap, draws Open Graph preview images and accepts contact form
// submissions.
//
// Sites can replace any page template via the ViewFuncs struct; docket
// handles the content index, handler logic and middleware.
package docket

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eringen/docket/content"
	"github.com/eringen/docket/ogimage"
)

// App is the central docket application. It wires together the post
// source, cache, handlers, middleware and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Posts  PostSource
	Views  ViewFuncs
	Logger *slog.Logger

	cache          *PostCache
	og             *ogimage.Loader
	windowStore    WindowStore
	contactLimiter *RateLimiter
	mailer         Mailer
	registry       *prometheus.Registry
	metrics        *metrics
	sessionKey     []byte
	customRoutes   []func(*App)
	closers        []func() error
	initialized    bool
}

// New creates a new App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views.withDefaults(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = NewLogger(a.Config.LogLevel, a.Config.LogFormat, os.Stderr)
	}
	return a
}

// Init builds the content index, rate limiter, mailer, middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	a.initialized = true

	if a.Posts == nil {
		a.initPosts()
	}

	a.og = ogimage.NewLoader(ogimage.Paths{
		FontRegular: a.Config.FontRegularPath,
		FontBold:    a.Config.FontBoldPath,
		Logo:        a.Config.LogoPath,
		Portrait:    a.Config.PortraitPath,
	})

	if a.windowStore == nil {
		if a.Config.RedisURL != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			store, err := OpenRedisWindowStore(ctx, a.Config.RedisURL)
			cancel()
			if err != nil {
				return fmt.Errorf("docket: init rate limit store: %w", err)
			}
			a.windowStore = store
		} else {
			a.windowStore = NewMemoryWindowStore(a.Config.ContactWindow)
		}
	}
	a.closers = append(a.closers, a.windowStore.Close)
	a.contactLimiter = NewRateLimiter(a.windowStore, a.Config.ContactLimit, a.Config.ContactWindow)

	if a.mailer == nil {
		if a.Config.MailEnabled() {
			a.mailer = NewSMTPMailer(a.Config)
		} else {
			a.Logger.Info("SMTP not configured; contact messages will be logged")
			a.mailer = LogMailer{Logger: a.Logger}
		}
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = newMetrics(a.registry)
	if a.cache != nil {
		a.cache.onReload = a.metrics.cacheReloads.Inc
	}

	a.sessionKey = []byte(a.Config.SessionSecret)
	if len(a.sessionKey) == 0 {
		a.sessionKey = make([]byte, 32)
		if _, err := rand.Read(a.sessionKey); err != nil {
			return fmt.Errorf("docket: generate session key: %w", err)
		}
		a.Logger.Warn("DOCKET_SESSION_SECRET not set; using a random key, flash messages will not survive a restart")
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) initPosts() {
	repo := content.NewRepository(a.Config.ContentDir,
		content.WithDefaultAuthor(a.Config.DefaultAuthor()),
		content.WithLogger(a.Logger),
		content.WithParseCache(content.NewParseCache()),
	)
	if a.Config.DisableCache {
		a.Posts = repo
		return
	}
	a.cache = NewPostCache(repo, a.Config.PostCacheTTL, a.Logger)
	if !a.Config.DisableWatch {
		if err := a.cache.Watch(a.Config.ContentDir); err != nil {
			a.Logger.Warn("content watcher disabled", "dir", a.Config.ContentDir, "error", err)
		}
	}
	a.closers = append(a.closers, a.cache.Close)
	a.Posts = a.cache
}

// Start initializes the app and starts the server. It returns when the
// server stops; a graceful Shutdown is not an error.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("listening", "addr", a.Config.Addr, "content", a.Config.ContentDir)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close releases the watcher, rate-limit store and other resources.
// Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Registry exposes the app's Prometheus registry for extra collectors.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/docket.css", a.handleStylesheet)
	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", a.metricsHandler())

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleRSS)
	e.GET("/atom.xml", a.handleAtom)
	e.GET("/og/:slug", a.handleOGImage)

	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/tags/", a.handleTags)
	e.GET("/blog/tag/:tag/", a.handleTag)
	e.GET("/blog/:category/", a.handleCategory)
	e.GET("/blog/:category/:slug/", a.handlePost)

	e.GET("/contact/", a.handleContactPage)
	e.POST("/contact/", a.handleContactForm)
	e.POST("/api/contact", a.handleContactAPI)
}
