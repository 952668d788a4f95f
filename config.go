package docket

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SiteConfig holds all configuration for a docket site. LoadConfig fills
// it from DOCKET_* environment variables; zero values get defaults.
type SiteConfig struct {
	Name        string `env:"DOCKET_SITE_NAME"`        // Site name (default "Blog")
	URL         string `env:"DOCKET_SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"DOCKET_SITE_DESCRIPTION"` // Site description for feeds and meta tags
	Author      string `env:"DOCKET_SITE_AUTHOR"`      // Default post author and JSON-LD author

	Addr        string   `env:"DOCKET_ADDR"`                          // Listen address (default ":3000")
	ContentDir  string   `env:"DOCKET_CONTENT_DIR"`                   // Content root (default "content/posts")
	StaticDir   string   `env:"DOCKET_STATIC_DIR"`                    // Static assets served under /public (default "public")
	StaticPages []string `env:"DOCKET_STATIC_PAGES" envSeparator:","` // Extra site paths listed in the sitemap (default "contact")

	FontRegularPath string `env:"DOCKET_OG_FONT_REGULAR"` // TTF/OTF for OG body text; empty uses Go Regular
	FontBoldPath    string `env:"DOCKET_OG_FONT_BOLD"`    // TTF/OTF for OG titles; empty uses Go Bold
	LogoPath        string `env:"DOCKET_OG_LOGO"`
	PortraitPath    string `env:"DOCKET_OG_PORTRAIT"`

	PostCacheTTL time.Duration `env:"DOCKET_POST_CACHE_TTL"` // Post cache TTL (default 5min)
	DisableCache bool          `env:"DOCKET_DISABLE_CACHE"`  // Read the content root on every request
	DisableWatch bool          `env:"DOCKET_DISABLE_WATCH"`  // Do not invalidate the cache on file changes

	RedisURL      string        `env:"DOCKET_REDIS_URL"`      // Shared rate-limit window; empty keeps it in memory
	ContactLimit  int           `env:"DOCKET_CONTACT_LIMIT"`  // Contact submissions per window (default 5)
	ContactWindow time.Duration `env:"DOCKET_CONTACT_WINDOW"` // Contact rate window (default 60s)

	SMTPHost     string `env:"DOCKET_SMTP_HOST"` // Empty logs messages instead of sending them
	SMTPPort     int    `env:"DOCKET_SMTP_PORT"` // default 587
	SMTPUsername string `env:"DOCKET_SMTP_USERNAME"`
	SMTPPassword string `env:"DOCKET_SMTP_PASSWORD"`
	MailFrom     string `env:"DOCKET_MAIL_FROM"`
	MailTo       string `env:"DOCKET_MAIL_TO"`
	MailPerMin   int    `env:"DOCKET_MAIL_PER_MINUTE"` // Outgoing mail throttle (default 30)

	SessionSecret string `env:"DOCKET_SESSION_SECRET"` // Flash cookie key; random per process when empty
	CookieSecure  bool   `env:"DOCKET_COOKIE_SECURE"`  // Set true for HTTPS

	LogLevel  string `env:"DOCKET_LOG_LEVEL"`  // debug, info, warn, error (default info)
	LogFormat string `env:"DOCKET_LOG_FORMAT"` // text or json (default text)
}

// setDefaults fills unset fields. Zero or negative durations, limits and
// ports count as unset.
func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/posts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.StaticPages == nil {
		c.StaticPages = []string{"contact"}
	}
	if c.PostCacheTTL <= 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.ContactLimit <= 0 {
		c.ContactLimit = 5
	}
	if c.ContactWindow <= 0 {
		c.ContactWindow = time.Minute
	}
	if c.SMTPPort <= 0 {
		c.SMTPPort = 587
	}
	if c.MailPerMin <= 0 {
		c.MailPerMin = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// DefaultAuthor is the author credited on posts that name none.
func (c SiteConfig) DefaultAuthor() string {
	if c.Author != "" {
		return c.Author
	}
	return c.Name
}

// MailEnabled reports whether SMTP delivery is configured.
func (c SiteConfig) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailTo != ""
}

// LoadConfig reads an optional .env file, then the environment, and
// applies defaults.
func LoadConfig() (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SiteConfig{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithMailer replaces the mailer chosen from the SMTP settings.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithWindowStore replaces the rate-limit store chosen from RedisURL.
func WithWindowStore(s WindowStore) Option {
	return func(a *App) {
		a.windowStore = s
	}
}

// WithPostSource serves posts from src instead of the content directory.
func WithPostSource(src PostSource) Option {
	return func(a *App) {
		a.Posts = src
	}
}
