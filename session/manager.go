package session

import (
	"net/http"
	"time"
)

const (
	DefaultName   = "RJ_session"
	DefaultMaxAge = 30 * 24 * time.Hour
)

// Options configures the session cookie.
type Options struct {
	Name   string
	Path   string
	MaxAge time.Duration
	// Secure should be enabled only where the site is served over HTTPS.
	Secure bool
	// Now overrides the clock.
	Now func() time.Time
	// OnInvalid is called for every cookie that fails verification.
	OnInvalid func()
}

// Manager turns request cookies into sessions and sessions into
// Set-Cookie values. It holds no per-session state.
type Manager struct {
	codec     *Codec
	name      string
	path      string
	maxAge    time.Duration
	secure    bool
	now       func() time.Time
	onInvalid func()
}

// NewManager creates a Manager.
func NewManager(codec *Codec, options Options) *Manager {
	m := &Manager{
		codec:     codec,
		name:      options.Name,
		path:      options.Path,
		maxAge:    options.MaxAge,
		secure:    options.Secure,
		now:       options.Now,
		onInvalid: options.OnInvalid,
	}
	if m.name == "" {
		m.name = DefaultName
	}
	if m.path == "" {
		m.path = "/"
	}
	if m.maxAge <= 0 {
		m.maxAge = DefaultMaxAge
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Name returns the cookie name.
func (m *Manager) Name() string {
	return m.name
}

// FromRequest reads the session cookie from r.
func (m *Manager) FromRequest(r *http.Request) Session {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return Session{values: map[string]string{}}
	}
	return m.fromValue(cookie.Value)
}

// FromCookieHeader reads the session cookie from a raw Cookie header.
func (m *Manager) FromCookieHeader(header string) Session {
	if header == "" {
		return Session{values: map[string]string{}}
	}
	r := &http.Request{Header: http.Header{"Cookie": {header}}}
	return m.FromRequest(r)
}

func (m *Manager) fromValue(value string) Session {
	if value == "" {
		return Session{values: map[string]string{}}
	}
	values, ok := m.codec.Decode(value, m.now())
	if !ok {
		if m.onInvalid != nil {
			m.onInvalid()
		}
		return Session{values: map[string]string{}, invalid: true}
	}
	return Session{values: values}
}

// Commit encodes s into a cookie that lives for the configured max age.
func (m *Manager) Commit(s Session) (*http.Cookie, error) {
	now := m.now()
	expires := now.Add(m.maxAge)
	value, err := m.codec.Encode(s.values, expires)
	if err != nil {
		return nil, err
	}

	cookie := m.baseCookie()
	cookie.Value = value
	cookie.MaxAge = int(m.maxAge.Seconds())
	cookie.Expires = expires.UTC()
	return cookie, nil
}

// CommitHeader returns the Set-Cookie header value for s.
func (m *Manager) CommitHeader(s Session) (string, error) {
	cookie, err := m.Commit(s)
	if err != nil {
		return "", err
	}
	return cookie.String(), nil
}

// Destroy returns a cookie that expires the session immediately.
func (m *Manager) Destroy() *http.Cookie {
	cookie := m.baseCookie()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0).UTC()
	return cookie
}

// DestroyHeader returns the Set-Cookie header value that clears the session.
func (m *Manager) DestroyHeader() string {
	return m.Destroy().String()
}

func (m *Manager) baseCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Path:     m.path,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
