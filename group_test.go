package jokebox

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJoinPaths(t *testing.T) {
	cases := []struct {
		base string
		path string
		want string
	}{
		{"", "/jokes", "/jokes"},
		{"/jokes", "/new", "/jokes/new"},
		{"/jokes/", "new", "/jokes/new"},
		{"/", "/health", "/health"},
		{"/jokes", "/", "/jokes"},
		{"jokes", "{jokeId}", "/jokes/{jokeId}"},
	}

	for _, tc := range cases {
		if got := joinPaths(tc.base, tc.path); got != tc.want {
			t.Fatalf("joinPaths(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestGroupMiddlewareOrder(t *testing.T) {
	app := New(WithLogger(discardLogger()))
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx *Context) error {
				order = append(order, name)
				return next(ctx)
			}
		}
	}

	group := app.Group("/jokes", mark("group"))
	group.GET("/{jokeId}", func(ctx *Context) error {
		order = append(order, "handler:"+ctx.Param("jokeId"))
		return ctx.Text(http.StatusOK, "ok")
	}, mark("route"))
	app.Use(mark("global"))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jokes/42", nil))

	want := []string{"global", "group", "route", "handler:42"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}
