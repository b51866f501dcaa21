// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/devmarvs/jokebox/store"
	"github.com/google/uuid"
)

// Store keeps users and jokes in maps guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	users      map[string]store.User
	byUsername map[string]string
	jokes      map[string]store.Joke
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty Store.
func New(options ...Option) *Store {
	s := &Store{
		users:      map[string]store.User{},
		byUsername: map[string]string{},
		jokes:      map[string]store.Joke{},
		now:        time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) CreateUser(_ context.Context, in store.NewUser) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[in.Username]; exists {
		return nil, store.ErrConflict
	}

	now := s.now().UTC()
	user := store.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user
	s.byUsername[in.Username] = user.ID
	return &user, nil
}

func (s *Store) UserByID(_ context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *Store) CreateJoke(_ context.Context, in store.NewJoke) (*store.Joke, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[in.JokesterID]; !ok {
		return nil, store.ErrNotFound
	}

	now := s.now().UTC()
	joke := store.Joke{
		ID:         uuid.NewString(),
		JokesterID: in.JokesterID,
		Name:       in.Name,
		Content:    in.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.jokes[joke.ID] = joke
	return &joke, nil
}

func (s *Store) JokeByID(_ context.Context, id string) (*store.Joke, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	joke, ok := s.jokes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &joke, nil
}

func (s *Store) DeleteJoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jokes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.jokes, id)
	return nil
}

func (s *Store) CountJokes(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jokes), nil
}

func (s *Store) JokeAt(_ context.Context, offset int) (*store.Joke, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.sortedLocked()
	if offset < 0 || offset >= len(ordered) {
		return nil, store.ErrNotFound
	}
	joke := ordered[offset]
	return &joke, nil
}

func (s *Store) LatestJokes(_ context.Context, limit int) ([]store.Joke, error) {
	if limit <= 0 {
		return []store.Joke{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.sortedLocked()
	out := make([]store.Joke, 0, min(limit, len(ordered)))
	for i := len(ordered) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, ordered[i])
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// sortedLocked returns jokes oldest first, ties broken by id.
func (s *Store) sortedLocked() []store.Joke {
	ordered := make([]store.Joke, 0, len(s.jokes))
	for _, joke := range s.jokes {
		ordered = append(ordered, joke)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}
