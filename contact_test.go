package docket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validContact = `{"name":"Ada Lovelace","email":"ada@example.com","subject":"Hello","message":"I enjoyed the post on contracts."}`

func TestContactAPIRateLimit(t *testing.T) {
	a := newTestApp(t)

	var codes []int
	var last *http.Response
	for range 6 {
		rec := a.postJSON(t, "/api/contact", validContact)
		codes = append(codes, rec.Code)
		last = rec.Result()
	}
	assert.Equal(t, []int{200, 200, 200, 200, 200, 429}, codes)

	retry, err := strconv.Atoi(last.Header.Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)
	assert.LessOrEqual(t, retry, 60)

	var body map[string]string
	require.NoError(t, json.NewDecoder(last.Body).Decode(&body))
	assert.Equal(t, "Too many requests. Please try again in a minute.", body["error"])
	assert.Len(t, a.mailer.sent(), 5)
}

func TestContactAPIRateLimitIsPerIP(t *testing.T) {
	a := newTestApp(t)
	for range 5 {
		a.postJSON(t, "/api/contact", validContact)
	}

	req := httptestRequestFrom(t, "198.51.100.7:4000", validContact)
	rec := serve(a.App, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactAPISuccess(t *testing.T) {
	a := newTestApp(t)
	rec := a.postJSON(t, "/api/contact", validContact)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.ID)

	sent := a.mailer.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, body.ID, sent[0].ID)
	assert.Equal(t, "Ada Lovelace", sent[0].Name)
	assert.Equal(t, "ada@example.com", sent[0].Email)
	assert.Equal(t, "I enjoyed the post on contracts.", sent[0].Body)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestContactAPIValidation(t *testing.T) {
	long := strings.Repeat("x", 5001)
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"missing everything", `{}`, []string{"name", "email", "message"}},
		{"short name", `{"name":"A","email":"a@example.com","message":"long enough message"}`, []string{"name"}},
		{"bad email", `{"name":"Ada","email":"not-an-email","message":"long enough message"}`, []string{"email"}},
		{"short message", `{"name":"Ada","email":"a@example.com","message":"hi"}`, []string{"message"}},
		{"long message", `{"name":"Ada","email":"a@example.com","message":"` + long + `"}`, []string{"message"}},
		{"long subject", `{"name":"Ada","email":"a@example.com","subject":"` + strings.Repeat("s", 201) + `","message":"long enough message"}`, []string{"subject"}},
		{"whitespace name", `{"name":"   ","email":"a@example.com","message":"long enough message"}`, []string{"name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			rec := a.postJSON(t, "/api/contact", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			for _, f := range tt.fields {
				assert.Contains(t, body.Fields, f)
			}
			assert.Len(t, body.Fields, len(tt.fields))
			assert.Empty(t, a.mailer.sent())
		})
	}
}

func TestContactAPIMalformedJSON(t *testing.T) {
	a := newTestApp(t)
	rec := a.postJSON(t, "/api/contact", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactAPIMailerFailure(t *testing.T) {
	a := newTestApp(t)
	a.mailer.err = errors.New("smtp: connection refused")

	rec := a.postJSON(t, "/api/contact", validContact)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to send message."}`, rec.Body.String())
}

func TestContactAPIRateLimitRunsBeforeValidation(t *testing.T) {
	a := newTestApp(t)
	for range 5 {
		rec := a.postJSON(t, "/api/contact", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := a.postJSON(t, "/api/contact", validContact)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestContactMetrics(t *testing.T) {
	a := newTestApp(t)
	a.postJSON(t, "/api/contact", validContact)
	a.postJSON(t, "/api/contact", `{}`)

	body := a.get(t, "/metrics").Body.String()
	assert.Contains(t, body, `docket_contact_submissions_total{result="sent"} 1`)
	assert.Contains(t, body, `docket_contact_submissions_total{result="invalid"} 1`)
}

// csrfCookie fetches the contact page and returns its CSRF cookie.
func csrfCookie(t *testing.T, a *testApp) *http.Cookie {
	t.Helper()
	rec := a.get(t, "/contact/")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			return c
		}
	}
	t.Fatal("no _csrf cookie")
	return nil
}

func cookieNamed(rec *http.Response, name string) *http.Cookie {
	for _, c := range rec.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestContactFormPostRedirectGet(t *testing.T) {
	a := newTestApp(t)
	csrf := csrfCookie(t, a)

	form := url.Values{
		"_csrf":   {csrf.Value},
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"message": {"I enjoyed the post on contracts."},
	}
	rec := a.postForm(t, "/contact/", form, csrf)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/contact/", rec.Header().Get("Location"))
	require.Len(t, a.mailer.sent(), 1)

	sess := cookieNamed(rec.Result(), sessionName)
	require.NotNil(t, sess)

	req := httptestGet("/contact/", sess)
	page := serve(a.App, req)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Thanks, your message has been sent.")

	// The flash is shown once.
	next := cookieNamed(page.Result(), sessionName)
	if next == nil {
		next = sess
	}
	again := serve(a.App, httptestGet("/contact/", next))
	assert.NotContains(t, again.Body.String(), "Thanks, your message has been sent.")
}

func TestContactFormValidationRerenders(t *testing.T) {
	a := newTestApp(t)
	csrf := csrfCookie(t, a)

	form := url.Values{
		"_csrf":   {csrf.Value},
		"name":    {"Ada"},
		"email":   {"nope"},
		"message": {"short"},
	}
	rec := a.postForm(t, "/contact/", form, csrf)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "must be a valid email address")
	assert.Contains(t, body, "must be at least 10 characters")
	assert.Contains(t, body, `value="Ada"`)
	assert.Empty(t, a.mailer.sent())
}

func TestContactFormRequiresCSRF(t *testing.T) {
	a := newTestApp(t)
	form := url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"message": {"I enjoyed the post on contracts."},
	}
	rec := a.postForm(t, "/contact/", form)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, a.mailer.sent())
}

func TestContactFormRateLimitFlash(t *testing.T) {
	cfg := testConfig(seedContent(t))
	cfg.ContactLimit = 1
	a := newTestAppWithConfig(t, cfg)
	csrf := csrfCookie(t, a)

	form := url.Values{
		"_csrf":   {csrf.Value},
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"message": {"I enjoyed the post on contracts."},
	}
	a.postForm(t, "/contact/", form, csrf)
	rec := a.postForm(t, "/contact/", form, csrf)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	sess := cookieNamed(rec.Result(), sessionName)
	require.NotNil(t, sess)
	page := serve(a.App, httptestGet("/contact/", sess))
	assert.Contains(t, page.Body.String(), "Too many requests")
	assert.Len(t, a.mailer.sent(), 1)
}
