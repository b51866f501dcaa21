// Package testutil holds HTTP helpers shared by handler and middleware tests.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/devmarvs/jokebox"
)

// Do executes a request against a handler.
func Do(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// MustStatus asserts the response status code.
func MustStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (body %q)", status, rec.Code, rec.Body.String())
	}
}

// MustHeader asserts a response header value.
func MustHeader(t *testing.T, rec *httptest.ResponseRecorder, key, value string) {
	t.Helper()
	if got := rec.Header().Get(key); got != value {
		t.Fatalf("expected header %s=%q, got %q", key, value, got)
	}
}

// MustRedirect asserts a 303 See Other to location.
func MustRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	MustStatus(t, rec, http.StatusSeeOther)
	MustHeader(t, rec, "Location", location)
}

// DecodeJSON decodes a JSON response into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

// FormRequest builds a POST request with an urlencoded body.
func FormRequest(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

// GetRequest builds a GET request carrying cookies.
func GetRequest(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

// MustCookie returns the named Set-Cookie from a response.
func MustCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("expected Set-Cookie %s, got %v", name, rec.Header().Values("Set-Cookie"))
	return nil
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RunMiddleware executes middleware with a handler and request.
func RunMiddleware(t *testing.T, middleware []jokebox.Middleware, handler jokebox.Handler, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	if req == nil {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
	}

	app := jokebox.New(jokebox.WithLogger(DiscardLogger()))
	rec := httptest.NewRecorder()
	ctx := jokebox.NewContext(rec, req, app)

	h := handler
	if h == nil {
		h = func(*jokebox.Context) error { return nil }
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}

	err := h(ctx)
	return rec, err
}
