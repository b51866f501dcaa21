package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/devmarvs/jokebox/password"
	"github.com/devmarvs/jokebox/store"
	"github.com/devmarvs/jokebox/store/memory"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/crypto/bcrypt"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) AuthEvent(event, outcome string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event+":"+outcome)
}

// countingHasher records how many verifications ran.
type countingHasher struct {
	password.Hasher
	verifies int
}

func (c *countingHasher) Verify(plaintext, digest string) bool {
	c.verifies++
	return c.Hasher.Verify(plaintext, digest)
}

func newService(t *testing.T, options ...ServiceOption) (*Service, *countingHasher) {
	t.Helper()
	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	counting := &countingHasher{Hasher: hasher}
	return NewService(memory.New(), counting, options...), counting
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "kody", "twixrox")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.ID == "" || registered.Username != "kody" {
		t.Fatalf("unexpected identity %+v", registered)
	}

	loggedIn, err := svc.Login(ctx, "kody", "twixrox")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn != registered {
		t.Fatalf("expected %+v, got %+v", registered, loggedIn)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, hasher := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "kody", "twixrox"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, "kody", "nope-nope")
	verifiesAfterWrong := hasher.verifies
	_, unknownUser := svc.Login(ctx, "nobody", "twixrox")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v and %v", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPassword, unknownUser)
	}
	if hasher.verifies != verifiesAfterWrong {
		t.Fatalf("expected no hash verification for unknown user")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "kody", "twixrox"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(ctx, "kody", "another1")
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	taken, err := svc.UsernameTaken(ctx, "kody")
	if err != nil || !taken {
		t.Fatalf("expected kody to be taken, got %v %v", taken, err)
	}
	taken, err = svc.UsernameTaken(ctx, "free")
	if err != nil || taken {
		t.Fatalf("expected free to be available, got %v %v", taken, err)
	}
}

func TestLoginStoreFailure(t *testing.T) {
	hasher, _ := password.NewBcrypt(bcrypt.MinCost)
	svc := NewService(failingUsers{}, hasher)

	_, err := svc.Login(context.Background(), "kody", "twixrox")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected store failure, got %v", err)
	}
}

type failingUsers struct {
	store.UserStore
}

func (failingUsers) UserByUsername(context.Context, string) (*store.User, error) {
	return nil, errors.New("database unavailable")
}

func TestServiceEventsAndSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	events := &eventLog{}
	svc, _ := newService(t, WithTracerProvider(provider), WithEventRecorder(events))
	ctx := context.Background()

	if _, err := svc.Register(ctx, "kody", "twixrox"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _ = svc.Login(ctx, "kody", "wrong-password")
	_, _ = svc.Register(ctx, "kody", "twixrox")

	want := []string{"register:success", "login:failure", "register:conflict"}
	if len(events.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events.events)
	}
	for i := range want {
		if events.events[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, events.events)
		}
	}

	names := map[string]int{}
	for _, span := range recorder.Ended() {
		names[span.Name()]++
	}
	if names["auth.Register"] != 2 || names["auth.Login"] != 1 || names["password.Verify"] != 1 || names["password.Hash"] != 2 {
		t.Fatalf("unexpected spans %v", names)
	}
}
