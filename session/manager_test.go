package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, secure bool) *Manager {
	t.Helper()
	return NewManager(mustCodec(t, "s3cr3t"), Options{
		Secure: secure,
		Now:    func() time.Time { return testNow },
	})
}

func TestManagerCommitAndRead(t *testing.T) {
	manager := newTestManager(t, false)

	sess := manager.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	if !sess.Empty() || sess.Invalid() {
		t.Fatalf("expected empty valid session")
	}

	sess = sess.With(UserIDKey, "user-1")
	cookie, err := manager.Commit(sess)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	restored := manager.FromRequest(req)
	if got, ok := restored.Get(UserIDKey); !ok || got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
}

func TestManagerFromCookieHeader(t *testing.T) {
	manager := newTestManager(t, false)
	cookie, err := manager.Commit(New(map[string]string{UserIDKey: "user-2"}))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	header := "other=1; " + cookie.Name + "=" + cookie.Value
	sess := manager.FromCookieHeader(header)
	if got, _ := sess.Get(UserIDKey); got != "user-2" {
		t.Fatalf("expected user-2, got %q", got)
	}

	if !manager.FromCookieHeader("").Empty() {
		t.Fatalf("expected empty session for empty header")
	}
}

func TestManagerCommitHeaderAttributes(t *testing.T) {
	header, err := newTestManager(t, false).CommitHeader(New(map[string]string{UserIDKey: "user-1"}))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	for _, want := range []string{"RJ_session=", "Path=/", "Max-Age=2592000", "HttpOnly", "SameSite=Lax"} {
		if !strings.Contains(header, want) {
			t.Fatalf("expected %q in %q", want, header)
		}
	}
	if strings.Contains(header, "Secure") {
		t.Fatalf("did not expect Secure outside production: %q", header)
	}

	secureHeader, err := newTestManager(t, true).CommitHeader(New(nil))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !strings.Contains(secureHeader, "Secure") {
		t.Fatalf("expected Secure attribute: %q", secureHeader)
	}
}

func TestManagerDestroy(t *testing.T) {
	manager := newTestManager(t, false)
	cookie := manager.Destroy()
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("expected expired empty cookie, got %+v", cookie)
	}

	header := manager.DestroyHeader()
	if !strings.Contains(header, "Max-Age=0") || !strings.Contains(header, "1970") {
		t.Fatalf("expected immediate expiry, got %q", header)
	}
}

func TestManagerInvalidCookieYieldsEmptySession(t *testing.T) {
	invalid := 0
	manager := NewManager(mustCodec(t, "s3cr3t"), Options{
		Now:       func() time.Time { return testNow },
		OnInvalid: func() { invalid++ },
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultName, Value: "forged.value"})
	sess := manager.FromRequest(req)

	if !sess.Empty() || !sess.Invalid() {
		t.Fatalf("expected empty invalid session")
	}
	if invalid != 1 {
		t.Fatalf("expected invalid hook, got %d", invalid)
	}
}

func TestManagerExpiredCookie(t *testing.T) {
	issuer := NewManager(mustCodec(t, "s3cr3t"), Options{
		MaxAge: time.Minute,
		Now:    func() time.Time { return testNow },
	})
	cookie, err := issuer.Commit(New(map[string]string{UserIDKey: "user-1"}))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	later := NewManager(mustCodec(t, "s3cr3t"), Options{
		Now: func() time.Time { return testNow.Add(2 * time.Minute) },
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if _, ok := later.FromRequest(req).Get(UserIDKey); ok {
		t.Fatalf("expected expired session to carry no identity")
	}
}

func TestSessionUpdatesAreImmutable(t *testing.T) {
	original := New(map[string]string{"a": "1"})
	updated := original.With("b", "2")
	removed := updated.Without("a")

	if _, ok := original.Get("b"); ok {
		t.Fatalf("With mutated the receiver")
	}
	if _, ok := updated.Get("a"); !ok {
		t.Fatalf("Without mutated the receiver")
	}
	if _, ok := removed.Get("a"); ok {
		t.Fatalf("expected key removed")
	}

	values := removed.Values()
	values["c"] = "3"
	if _, ok := removed.Get("c"); ok {
		t.Fatalf("Values returned internal map")
	}
}
