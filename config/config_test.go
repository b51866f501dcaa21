package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultRequiresSecret(t *testing.T) {
	err := Validate(Default())
	if !errors.Is(err, ErrSessionSecretRequired) {
		t.Fatalf("expected ErrSessionSecretRequired, got %v", err)
	}
}

func TestValidateAcceptsDefaultsWithSecret(t *testing.T) {
	cfg := Default()
	cfg.Session.Secret = "s3cr3t"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateAggregatesIssues(t *testing.T) {
	cfg := Default()
	cfg.Session.Secret = "s3cr3t"
	cfg.LogLevel = "loud"
	cfg.Database.Driver = "postgres"

	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "log_level") || !strings.Contains(err.Error(), "database.url") {
		t.Fatalf("expected both issues, got %v", err)
	}
	if errors.Is(err, ErrSessionSecretRequired) {
		t.Fatalf("secret is set, did not expect ErrSessionSecretRequired")
	}
}

func TestSessionSecretsOrder(t *testing.T) {
	cfg := Default()
	cfg.Session.Secret = "current"
	cfg.Session.Secrets = []string{" ", "previous"}

	secrets := cfg.SessionSecrets()
	if len(secrets) != 2 {
		t.Fatalf("expected 2 secrets, got %d", len(secrets))
	}
	if string(secrets[0]) != "current" || string(secrets[1]) != "previous" {
		t.Fatalf("unexpected secrets %q", secrets)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JOKEBOX_SESSION_SECRET", "from-env")
	t.Setenv("JOKEBOX_ENVIRONMENT", "production")
	t.Setenv("JOKEBOX_DATABASE_DRIVER", "sqlite")
	t.Setenv("JOKEBOX_DATABASE_URL", "file:jokes.db")
	t.Setenv("JOKEBOX_SESSION_MAX_AGE", "1h")

	cfg, err := Load("", DefaultEnvPrefix)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Secret != "from-env" {
		t.Fatalf("expected secret from env, got %q", cfg.Session.Secret)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production environment")
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.URL != "file:jokes.db" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Session.MaxAge != time.Hour {
		t.Fatalf("expected max age 1h, got %v", cfg.Session.MaxAge)
	}
	if cfg.Address != ":8080" {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
}

func TestLoadNormalizesDriverCase(t *testing.T) {
	t.Setenv("JOKEBOX_SESSION_SECRET", "from-env")
	t.Setenv("JOKEBOX_DATABASE_DRIVER", "SQLite")
	t.Setenv("JOKEBOX_DATABASE_URL", "file:jokes.db")
	t.Setenv("JOKEBOX_PASSWORD_ALGORITHM", " Argon2id ")
	t.Setenv("JOKEBOX_ENVIRONMENT", "Production")

	cfg, err := Load("", DefaultEnvPrefix)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected lowercase driver, got %q", cfg.Database.Driver)
	}
	if cfg.Password.Algorithm != "argon2id" {
		t.Fatalf("expected normalized algorithm, got %q", cfg.Password.Algorithm)
	}
	if cfg.Environment != EnvProduction {
		t.Fatalf("expected normalized environment, got %q", cfg.Environment)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateIgnoresCase(t *testing.T) {
	cfg := Default()
	cfg.Session.Secret = "s"
	cfg.Database.Driver = "Postgres"
	cfg.Database.URL = "postgres://localhost/jokes"
	cfg.Password.Algorithm = "BCRYPT"
	cfg.LogFormat = "JSON"

	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestSecurityDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Security.ContentSecurityPolicy != "default-src 'none'; frame-ancestors 'none'; form-action 'self'" {
		t.Fatalf("unexpected csp %q", cfg.Security.ContentSecurityPolicy)
	}
	if cfg.Security.HSTSMaxAge != 2*365*24*time.Hour || !cfg.Security.HSTSIncludeSubdomains {
		t.Fatalf("unexpected hsts defaults %+v", cfg.Security)
	}

	cfg.Session.Secret = "s"
	cfg.Security.HSTSMaxAge = -time.Second
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "security.hsts_max_age") {
		t.Fatalf("expected hsts issue, got %v", err)
	}
}

func TestLoadBareSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "legacy")

	cfg, err := Load("", DefaultEnvPrefix)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Secret != "legacy" {
		t.Fatalf("expected SESSION_SECRET to be read, got %q", cfg.Session.Secret)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jokebox.yaml")
	content := `
address: ":9090"
log_format: json
session:
  secrets: ["one", "two"]
password:
  algorithm: argon2id
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != ":9090" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected server config %+v", cfg)
	}
	if len(cfg.Session.Secrets) != 2 || cfg.Session.Secrets[1] != "two" {
		t.Fatalf("unexpected secrets %v", cfg.Session.Secrets)
	}
	if cfg.Password.Algorithm != "argon2id" {
		t.Fatalf("expected argon2id, got %q", cfg.Password.Algorithm)
	}
	if cfg.Session.CookieName != "RJ_session" {
		t.Fatalf("expected default cookie name, got %q", cfg.Session.CookieName)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
