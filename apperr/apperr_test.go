package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	base := NotFound("joke not found", nil)
	wrapped := fmt.Errorf("load: %w", base)

	got := As(wrapped)
	if got == nil {
		t.Fatalf("expected app error")
	}
	if got.Status != http.StatusNotFound || got.Code != CodeNotFound {
		t.Fatalf("unexpected error: %+v", got)
	}
	if As(errors.New("plain")) != nil {
		t.Fatalf("expected nil for plain error")
	}
}

func TestLoginRedirectEncodesPath(t *testing.T) {
	redirect := LoginRedirect("/login", "/original/path")
	if redirect.Location != "/login?redirectTo=%2Foriginal%2Fpath" {
		t.Fatalf("unexpected location %q", redirect.Location)
	}
	if redirect.Status != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", redirect.Status)
	}
}

func TestRedirectIsNotAnAppError(t *testing.T) {
	var err error = RedirectTo("/jokes")
	if As(err) != nil {
		t.Fatalf("redirect must not look like a failure")
	}
	got, ok := AsRedirect(fmt.Errorf("wrapped: %w", err))
	if !ok || got.Location != "/jokes" {
		t.Fatalf("expected redirect, got %v", got)
	}
}

func TestTooLarge(t *testing.T) {
	cause := errors.New("http: request body too large")
	err := TooLarge("request body exceeds 16 bytes", cause)
	if err.Status != http.StatusRequestEntityTooLarge || err.Code != CodeTooLarge {
		t.Fatalf("unexpected error: %+v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
}
