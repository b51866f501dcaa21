// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devmarvs/jokebox/store"
)

// Factory returns an empty store whose timestamps come from now.
type Factory func(t *testing.T, now func() time.Time) store.Store

// Clock hands out strictly increasing whole-second instants.
type Clock struct {
	mu  sync.Mutex
	cur time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{cur: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// Now advances the clock by one second and returns the new instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

// Run exercises the store contract.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("CreateAndFindUser", func(t *testing.T) {
		s := factory(t, NewClock().Now)
		ctx := context.Background()

		created, err := s.CreateUser(ctx, store.NewUser{Username: "kody", PasswordHash: "digest"})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		if created.ID == "" {
			t.Fatalf("expected id to be assigned")
		}

		byID, err := s.UserByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("user by id: %v", err)
		}
		if byID.Username != "kody" || byID.PasswordHash != "digest" {
			t.Fatalf("unexpected user %+v", byID)
		}
		if !byID.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("expected created at %v, got %v", created.CreatedAt, byID.CreatedAt)
		}

		byName, err := s.UserByUsername(ctx, "kody")
		if err != nil {
			t.Fatalf("user by username: %v", err)
		}
		if byName.ID != created.ID {
			t.Fatalf("expected id %q, got %q", created.ID, byName.ID)
		}
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		s := factory(t, NewClock().Now)
		ctx := context.Background()

		if _, err := s.CreateUser(ctx, store.NewUser{Username: "kody", PasswordHash: "a"}); err != nil {
			t.Fatalf("create user: %v", err)
		}
		_, err := s.CreateUser(ctx, store.NewUser{Username: "kody", PasswordHash: "b"})
		if !errors.Is(err, store.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("MissingUser", func(t *testing.T) {
		s := factory(t, NewClock().Now)
		ctx := context.Background()

		if _, err := s.UserByID(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound by id, got %v", err)
		}
		if _, err := s.UserByUsername(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound by username, got %v", err)
		}
	})

	t.Run("JokeLifecycle", func(t *testing.T) {
		s := factory(t, NewClock().Now)
		ctx := context.Background()
		user := mustUser(t, s, "kody")

		joke, err := s.CreateJoke(ctx, store.NewJoke{JokesterID: user.ID, Name: "Road", Content: "Why did the chicken cross?"})
		if err != nil {
			t.Fatalf("create joke: %v", err)
		}

		found, err := s.JokeByID(ctx, joke.ID)
		if err != nil {
			t.Fatalf("joke by id: %v", err)
		}
		if found.JokesterID != user.ID || found.Name != "Road" {
			t.Fatalf("unexpected joke %+v", found)
		}

		if err := s.DeleteJoke(ctx, joke.ID); err != nil {
			t.Fatalf("delete joke: %v", err)
		}
		if _, err := s.JokeByID(ctx, joke.ID); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.DeleteJoke(ctx, joke.ID); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("Ordering", func(t *testing.T) {
		s := factory(t, NewClock().Now)
		ctx := context.Background()
		user := mustUser(t, s, "kody")

		names := []string{"first", "second", "third", "fourth", "fifth", "sixth", "seventh"}
		for _, name := range names {
			if _, err := s.CreateJoke(ctx, store.NewJoke{JokesterID: user.ID, Name: name, Content: "content for " + name}); err != nil {
				t.Fatalf("create joke %s: %v", name, err)
			}
		}

		count, err := s.CountJokes(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != len(names) {
			t.Fatalf("expected %d jokes, got %d", len(names), count)
		}

		for i, name := range names {
			joke, err := s.JokeAt(ctx, i)
			if err != nil {
				t.Fatalf("joke at %d: %v", i, err)
			}
			if joke.Name != name {
				t.Fatalf("joke at %d: expected %q, got %q", i, name, joke.Name)
			}
		}
		if _, err := s.JokeAt(ctx, len(names)); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound past the end, got %v", err)
		}

		latest, err := s.LatestJokes(ctx, 5)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		want := []string{"seventh", "sixth", "fifth", "fourth", "third"}
		if len(latest) != len(want) {
			t.Fatalf("expected %d latest jokes, got %d", len(want), len(latest))
		}
		for i, name := range want {
			if latest[i].Name != name {
				t.Fatalf("latest[%d]: expected %q, got %q", i, name, latest[i].Name)
			}
		}
	})

	t.Run("EmptyCatalogue", func(t *testing.T) {
		s := factory(t, NewClock().Now)
		ctx := context.Background()

		count, err := s.CountJokes(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected no jokes, got %d", count)
		}
		if _, err := s.JokeAt(ctx, 0); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		latest, err := s.LatestJokes(ctx, 5)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if len(latest) != 0 {
			t.Fatalf("expected no latest jokes, got %d", len(latest))
		}
	})

	t.Run("Ping", func(t *testing.T) {
		s := factory(t, NewClock().Now)
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

func mustUser(t *testing.T, s store.Store, username string) *store.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), store.NewUser{Username: username, PasswordHash: "digest"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
