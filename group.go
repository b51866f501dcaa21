package jokebox

import (
	"net/http"
	"strings"
)

// Group defines a route group with a common prefix and middleware.
type Group struct {
	app        *App
	prefix     string
	middleware []Middleware
}

// Group creates a new route group.
func (a *App) Group(prefix string, middleware ...Middleware) *Group {
	return &Group{app: a, prefix: cleanPrefix(prefix), middleware: middleware}
}

// Group creates a nested group.
func (g *Group) Group(prefix string, middleware ...Middleware) *Group {
	joined := joinPaths(g.prefix, prefix)
	combined := append([]Middleware{}, g.middleware...)
	combined = append(combined, middleware...)
	return &Group{app: g.app, prefix: joined, middleware: combined}
}

// GET registers a GET route in the group.
func (g *Group) GET(path string, handler Handler, middleware ...Middleware) {
	g.handle(http.MethodGet, path, handler, middleware)
}

// POST registers a POST route in the group.
func (g *Group) POST(path string, handler Handler, middleware ...Middleware) {
	g.handle(http.MethodPost, path, handler, middleware)
}

// Handle registers a route in the group for an arbitrary method.
func (g *Group) Handle(method, path string, handler Handler, middleware ...Middleware) {
	g.handle(method, path, handler, middleware)
}

func (g *Group) handle(method, path string, handler Handler, middleware []Middleware) {
	fullPath := joinPaths(g.prefix, path)
	combined := append([]Middleware{}, g.middleware...)
	combined = append(combined, middleware...)
	g.app.handle(method, fullPath, handler, combined)
}

func joinPaths(base, path string) string {
	if base == "" {
		return cleanPrefix(path)
	}
	if path == "" || path == "/" {
		return cleanPrefix(base)
	}

	base = cleanPrefix(base)
	path = cleanPrefix(path)

	if base == "/" {
		return path
	}
	return strings.TrimRight(base, "/") + path
}

func cleanPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if len(prefix) > 1 {
		prefix = strings.TrimRight(prefix, "/")
	}
	return prefix
}
