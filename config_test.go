package docket

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "content/posts", cfg.ContentDir)
	assert.Equal(t, []string{"contact"}, cfg.StaticPages)
	assert.Equal(t, 5*time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, 5, cfg.ContactLimit)
	assert.Equal(t, time.Minute, cfg.ContactWindow)
	assert.Equal(t, "Blog", cfg.DefaultAuthor())
	assert.False(t, cfg.MailEnabled())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DOCKET_SITE_NAME", "Ledger Notes")
	t.Setenv("DOCKET_SITE_URL", "https://notes.example.com")
	t.Setenv("DOCKET_SITE_AUTHOR", "Jane Counsel")
	t.Setenv("DOCKET_CONTENT_DIR", "/srv/posts")
	t.Setenv("DOCKET_STATIC_PAGES", "contact,about")
	t.Setenv("DOCKET_POST_CACHE_TTL", "30s")
	t.Setenv("DOCKET_CONTACT_LIMIT", "3")
	t.Setenv("DOCKET_SMTP_HOST", "smtp.example.com")
	t.Setenv("DOCKET_MAIL_TO", "owner@example.com")
	t.Setenv("DOCKET_COOKIE_SECURE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Ledger Notes", cfg.Name)
	assert.Equal(t, "https://notes.example.com", cfg.URL)
	assert.Equal(t, "Jane Counsel", cfg.DefaultAuthor())
	assert.Equal(t, "/srv/posts", cfg.ContentDir)
	assert.Equal(t, []string{"contact", "about"}, cfg.StaticPages)
	assert.Equal(t, 30*time.Second, cfg.PostCacheTTL)
	assert.Equal(t, 3, cfg.ContactLimit)
	assert.True(t, cfg.MailEnabled())
	assert.True(t, cfg.CookieSecure)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("DOCKET_CONTACT_LIMIT", "many")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigNonPositiveFallsBack(t *testing.T) {
	t.Setenv("DOCKET_POST_CACHE_TTL", "-1s")
	t.Setenv("DOCKET_CONTACT_LIMIT", "-3")
	t.Setenv("DOCKET_CONTACT_WINDOW", "-1m")
	t.Setenv("DOCKET_SMTP_PORT", "-25")
	t.Setenv("DOCKET_MAIL_PER_MINUTE", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, 5, cfg.ContactLimit)
	assert.Equal(t, time.Minute, cfg.ContactWindow)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 30, cfg.MailPerMin)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("debug", "json", &buf).Debug("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	buf.Reset()
	NewLogger("bogus", "text", &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestInitUsesRedisWindowStore(t *testing.T) {
	_, mr := newRedisStore(t)
	cfg := testConfig(seedContent(t))
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	a := newTestAppWithConfig(t, cfg)

	_, ok := a.windowStore.(*RedisWindowStore)
	require.True(t, ok)
	rec := a.postJSON(t, "/api/contact", validContact)
	assert.Equal(t, 200, rec.Code)
	assert.NotEmpty(t, mr.Keys())
}

func TestInitFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig(seedContent(t))
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	a := New(cfg, DefaultViews(), WithLogger(discardLogger()))
	t.Cleanup(func() { a.Close() })
	assert.Error(t, a.Init())
}
