package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devmarvs/jokebox/config"
	"github.com/devmarvs/jokebox/password"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JOKEBOX_SESSION_SECRET", "")
	t.Setenv("JOKEBOX_DATABASE_DRIVER", "")
	t.Setenv("JOKEBOX_DATABASE_URL", "")
	t.Setenv("JOKEBOX_LOG_LEVEL", "error")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "jokebox "+version) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestServeRequiresSessionSecret(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "", "serve")
	if !errors.Is(err, config.ErrSessionSecretRequired) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOKEBOX_PASSWORD_BCRYPT_COST", "4")

	out, err := execute(t, "twixrox\n", "hash-password")
	if err != nil {
		t.Fatalf("hash-password: %v", err)
	}
	digest := strings.TrimSpace(out)

	hasher, err := password.New(password.Config{BcryptCost: 4})
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	if !hasher.Verify("twixrox", digest) {
		t.Fatalf("digest %q does not verify", digest)
	}

	if _, err := execute(t, "", "hash-password"); err == nil {
		t.Fatalf("expected error for empty stdin")
	}
}

func TestMigrateSQLite(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOKEBOX_SESSION_SECRET", "test-secret")
	t.Setenv("JOKEBOX_DATABASE_DRIVER", "sqlite")
	t.Setenv("JOKEBOX_DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "jokes.db"))

	out, err := execute(t, "", "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "applied ") {
		t.Fatalf("expected applied migrations, got %q", out)
	}

	out, err = execute(t, "", "migrate")
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !strings.Contains(out, "No migrations to apply") {
		t.Fatalf("expected nothing to apply, got %q", out)
	}
}

func TestMigrateMemoryIsNoop(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOKEBOX_SESSION_SECRET", "test-secret")

	out, err := execute(t, "", "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "driver: memory") {
		t.Fatalf("unexpected output %q", out)
	}
}
