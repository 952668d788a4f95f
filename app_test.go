package docket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMailer records messages and fails with err when set.
type fakeMailer struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *fakeMailer) sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.msgs...)
}

func writePost(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// seedContent writes two published posts and one draft.
func seedContent(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writePost(t, root, "law/contracts.md", `---
title: Smart Contracts as Contracts
date: 2024-03-10
author: Jane Counsel
tags: [Law, Smart Contracts]
excerpt: Are smart contracts enforceable?
---
## Formation

Offer and acceptance.
`)
	writePost(t, root, "crypto/stablecoins.md", `---
title: Stablecoin Regulation
date: 2024-05-01
tags: [crypto, law]
---
Reserve requirements for issuers.
`)
	writePost(t, root, "law/draft.md", `---
title: Unfinished thoughts
---
No date yet.
`)
	return root
}

func testConfig(contentDir string) SiteConfig {
	return SiteConfig{
		Name:          "Test Blog",
		URL:           "https://example.com",
		Description:   "Notes on law and crypto",
		Author:        "Site Author",
		ContentDir:    contentDir,
		StaticDir:     filepath.Join(contentDir, "..", "public-missing"),
		DisableWatch:  true,
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}
}

type testApp struct {
	*App
	mailer *fakeMailer
}

func newTestApp(t *testing.T, opts ...Option) *testApp {
	t.Helper()
	return newTestAppWithConfig(t, testConfig(seedContent(t)), opts...)
}

func newTestAppWithConfig(t *testing.T, cfg SiteConfig, opts ...Option) *testApp {
	t.Helper()
	mailer := &fakeMailer{}
	opts = append([]Option{WithLogger(discardLogger()), WithMailer(mailer)}, opts...)
	a := New(cfg, DefaultViews(), opts...)
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })
	return &testApp{App: a, mailer: mailer}
}

func (a *testApp) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postForm(t *testing.T, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func httptestGet(target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// httptestRequestFrom builds a JSON contact POST from remoteAddr.
func httptestRequestFrom(t *testing.T, remoteAddr, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	return req
}
