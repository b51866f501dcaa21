// Package session implements stateless, signed-cookie sessions.
//
// The cookie is the only record of a session: nothing is stored server
// side, so any instance holding the secret can read or issue it.
package session

import "maps"

// UserIDKey holds the authenticated user id.
const UserIDKey = "userId"

// Session is an immutable view of a decoded session payload.
type Session struct {
	values  map[string]string
	invalid bool
}

// New returns a session holding a copy of values.
func New(values map[string]string) Session {
	return Session{values: maps.Clone(values)}
}

// Get returns a value and whether it is present.
func (s Session) Get(key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

// With returns a copy of the session with key set.
func (s Session) With(key, value string) Session {
	values := make(map[string]string, len(s.values)+1)
	maps.Copy(values, s.values)
	values[key] = value
	return Session{values: values}
}

// Without returns a copy of the session with key removed.
func (s Session) Without(key string) Session {
	values := maps.Clone(s.values)
	delete(values, key)
	return Session{values: values}
}

// Values returns a copy of the payload.
func (s Session) Values() map[string]string {
	values := make(map[string]string, len(s.values))
	maps.Copy(values, s.values)
	return values
}

// Empty reports whether the payload has no keys.
func (s Session) Empty() bool {
	return len(s.values) == 0
}

// Invalid reports whether the request carried a cookie that failed
// verification. Such a session is always empty.
func (s Session) Invalid() bool {
	return s.invalid
}
