package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/devmarvs/jokebox/password"
	"github.com/devmarvs/jokebox/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/devmarvs/jokebox/auth"

// ErrInvalidCredentials covers both an unknown username and a wrong
// password. Callers must not be able to tell which one happened.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Event names and outcomes passed to an EventRecorder.
const (
	EventLogin    = "login"
	EventRegister = "register"

	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Identity is the minimal record of an authenticated user.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// EventRecorder observes authentication outcomes.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

// Service verifies credentials and registers users.
type Service struct {
	users  store.UserStore
	hasher password.Hasher
	tracer trace.Tracer
	events EventRecorder
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithTracerProvider sets the tracer provider; the global one is the default.
func WithTracerProvider(provider trace.TracerProvider) ServiceOption {
	return func(s *Service) {
		s.tracer = provider.Tracer(tracerName)
	}
}

// WithEventRecorder reports login and registration outcomes.
func WithEventRecorder(recorder EventRecorder) ServiceOption {
	return func(s *Service) {
		s.events = recorder
	}
}

// NewService creates a Service.
func NewService(users store.UserStore, hasher password.Hasher, options ...ServiceOption) *Service {
	s := &Service{
		users:  users,
		hasher: hasher,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Login checks username and password.
func (s *Service) Login(ctx context.Context, username, plaintext string) (Identity, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(EventLogin, OutcomeFailure)
			span.SetAttributes(attribute.String("auth.outcome", OutcomeFailure))
			return Identity{}, ErrInvalidCredentials
		}
		s.record(EventLogin, OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		return Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	_, verifySpan := s.tracer.Start(ctx, "password.Verify")
	ok := s.hasher.Verify(plaintext, user.PasswordHash)
	verifySpan.End()

	if !ok {
		s.record(EventLogin, OutcomeFailure)
		span.SetAttributes(attribute.String("auth.outcome", OutcomeFailure))
		return Identity{}, ErrInvalidCredentials
	}

	s.record(EventLogin, OutcomeSuccess)
	span.SetAttributes(attribute.String("auth.outcome", OutcomeSuccess), attribute.String("user.id", user.ID))
	return Identity{ID: user.ID, Username: user.Username}, nil
}

// Register hashes the password and creates the user. A duplicate username
// yields an error wrapping store.ErrConflict.
func (s *Service) Register(ctx context.Context, username, plaintext string) (Identity, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Register")
	defer span.End()

	_, hashSpan := s.tracer.Start(ctx, "password.Hash")
	digest, err := s.hasher.Hash(plaintext)
	hashSpan.End()
	if err != nil {
		s.record(EventRegister, OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, store.NewUser{Username: username, PasswordHash: digest})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.record(EventRegister, OutcomeConflict)
			span.SetAttributes(attribute.String("auth.outcome", OutcomeConflict))
			return Identity{}, fmt.Errorf("register %q: %w", username, err)
		}
		s.record(EventRegister, OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create user failed")
		return Identity{}, fmt.Errorf("create user: %w", err)
	}

	s.record(EventRegister, OutcomeSuccess)
	span.SetAttributes(attribute.String("auth.outcome", OutcomeSuccess), attribute.String("user.id", user.ID))
	return Identity{ID: user.ID, Username: user.Username}, nil
}

// UsernameTaken reports whether a user with username exists.
func (s *Service) UsernameTaken(ctx context.Context, username string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "auth.UsernameTaken")
	defer span.End()

	_, err := s.users.UserByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		span.RecordError(err)
		return false, fmt.Errorf("lookup user: %w", err)
	}
}

func (s *Service) record(event, outcome string) {
	if s.events != nil {
		s.events.AuthEvent(event, outcome)
	}
}
