package jokebox

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Context holds request-specific data.
type Context struct {
	ResponseWriter http.ResponseWriter
	Request        *http.Request

	app    *App
	values map[string]any
}

// NewContext constructs a Context.
func NewContext(w http.ResponseWriter, r *http.Request, app *App) *Context {
	return &Context{
		ResponseWriter: w,
		Request:        r,
		app:            app,
		values:         make(map[string]any),
	}
}

// Param returns a route param.
func (c *Context) Param(name string) string {
	return chi.URLParam(c.Request, name)
}

// Route returns the matched route pattern, or "" when nothing matched.
func (c *Context) Route() string {
	if rctx := chi.RouteContext(c.Request.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// Query returns a query param.
func (c *Context) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// FormValue returns a form field from the request body.
func (c *Context) FormValue(name string) string {
	return c.Request.PostFormValue(name)
}

// Set stores a value in the context.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get retrieves a stored value.
func (c *Context) Get(key string) (any, bool) {
	value, ok := c.values[key]
	return value, ok
}

// Logger returns the app logger bound to the request id.
func (c *Context) Logger() Logger {
	return Logger{logger: c.app.logger, ctx: c.Request.Context(), requestID: c.RequestID()}
}

// JSON responds with JSON.
func (c *Context) JSON(status int, payload any) error {
	c.ResponseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.ResponseWriter.WriteHeader(status)
	return json.NewEncoder(c.ResponseWriter).Encode(payload)
}

// Text responds with plain text.
func (c *Context) Text(status int, message string) error {
	c.ResponseWriter.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.ResponseWriter.WriteHeader(status)
	_, err := c.ResponseWriter.Write([]byte(message))
	return err
}

// Redirect responds with a redirect to location.
func (c *Context) Redirect(status int, location string) error {
	http.Redirect(c.ResponseWriter, c.Request, location, status)
	return nil
}

// SetCookie adds a Set-Cookie header.
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.ResponseWriter, cookie)
}

// RequestID returns the request id.
func (c *Context) RequestID() string {
	if id := RequestIDFromContext(c.Request.Context()); id != "" {
		return id
	}
	return RequestIDFromHeader(c.Request)
}
