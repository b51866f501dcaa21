// Package auth answers "who is making this request" and "may they do this":
// identity from the signed session cookie, credential checks, and the
// single-owner authorization guard.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/devmarvs/jokebox/apperr"
	"github.com/devmarvs/jokebox/session"
	"github.com/devmarvs/jokebox/store"
)

// DefaultLoginPath is where anonymous clients are sent by RequireUserID.
const DefaultLoginPath = "/login"

// ErrUnknownUser reports a validly signed session whose user no longer
// exists.
var ErrUnknownUser = errors.New("session user not found")

// Accessor reads and writes the identity carried by the session cookie.
type Accessor struct {
	sessions  *session.Manager
	users     store.UserStore
	loginPath string
}

// AccessorOption customizes an Accessor.
type AccessorOption func(*Accessor)

// WithLoginPath overrides the login redirect target.
func WithLoginPath(path string) AccessorOption {
	return func(a *Accessor) {
		a.loginPath = path
	}
}

// NewAccessor creates an Accessor.
func NewAccessor(sessions *session.Manager, users store.UserStore, options ...AccessorOption) *Accessor {
	a := &Accessor{sessions: sessions, users: users, loginPath: DefaultLoginPath}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Sessions returns the session manager.
func (a *Accessor) Sessions() *session.Manager {
	return a.sessions
}

// LoginPath returns the login redirect target.
func (a *Accessor) LoginPath() string {
	return a.loginPath
}

// UserID returns the session's user id when present and non-empty.
func (a *Accessor) UserID(r *http.Request) (string, bool) {
	id, ok := a.sessions.FromRequest(r).Get(session.UserIDKey)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// RequireUserID returns the user id or a *apperr.Redirect to the login page
// carrying redirectTo, which defaults to the request path.
func (a *Accessor) RequireUserID(r *http.Request, redirectTo string) (string, error) {
	if id, ok := a.UserID(r); ok {
		return id, nil
	}
	if redirectTo == "" {
		redirectTo = r.URL.Path
	}
	return "", apperr.LoginRedirect(a.loginPath, redirectTo)
}

// CurrentUser loads the session's user. It returns nil, nil for anonymous
// requests and ErrUnknownUser when the user is gone. Store failures are
// returned wrapped and leave the session untouched.
func (a *Accessor) CurrentUser(ctx context.Context, r *http.Request) (*store.User, error) {
	id, ok := a.UserID(r)
	if !ok {
		return nil, nil
	}
	user, err := a.users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// CreateUserSession issues a session for userID and redirects to
// redirectTo with 303 See Other.
func (a *Accessor) CreateUserSession(w http.ResponseWriter, r *http.Request, userID, redirectTo string) error {
	sess := a.sessions.FromRequest(r).With(session.UserIDKey, userID)
	cookie, err := a.sessions.Commit(sess)
	if err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
	return nil
}

// Logout destroys the session cookie and redirects to the login page.
func (a *Accessor) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, a.sessions.Destroy())
	http.Redirect(w, r, a.loginPath, http.StatusSeeOther)
}
