// Package store defines the persisted entities and the interfaces the
// service uses to reach them.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Joke struct {
	ID         string    `json:"id"`
	JokesterID string    `json:"jokesterId"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewUser holds the fields supplied when registering.
type NewUser struct {
	Username     string
	PasswordHash string
}

// NewJoke holds the fields supplied when submitting a joke.
type NewJoke struct {
	JokesterID string
	Name       string
	Content    string
}

// UserStore persists users. Usernames are unique: CreateUser returns
// ErrConflict for a duplicate.
type UserStore interface {
	CreateUser(ctx context.Context, user NewUser) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
}

// JokeStore persists jokes.
type JokeStore interface {
	CreateJoke(ctx context.Context, joke NewJoke) (*Joke, error)
	JokeByID(ctx context.Context, id string) (*Joke, error)
	DeleteJoke(ctx context.Context, id string) error
	CountJokes(ctx context.Context) (int, error)
	// JokeAt returns the joke at offset in creation order.
	JokeAt(ctx context.Context, offset int) (*Joke, error)
	// LatestJokes returns up to limit jokes, newest first.
	LatestJokes(ctx context.Context, limit int) ([]Joke, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	JokeStore
	Ping(ctx context.Context) error
	Close() error
}
