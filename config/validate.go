package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionSecretRequired reports a configuration without any session
// signing secret. The server must not start in that state.
var ErrSessionSecretRequired = errors.New("session secret must be set")

// Validate validates config values. Enumerated settings are compared after
// Normalize, so "SQLite" and "sqlite" are the same driver.
func Validate(cfg Config) error {
	cfg.Normalize()
	var issues []string

	if cfg.ReadTimeout < 0 {
		issues = append(issues, "read_timeout must be >= 0")
	}
	if cfg.WriteTimeout < 0 {
		issues = append(issues, "write_timeout must be >= 0")
	}
	if cfg.IdleTimeout < 0 {
		issues = append(issues, "idle_timeout must be >= 0")
	}
	if cfg.ReadHeaderTimeout < 0 {
		issues = append(issues, "read_header_timeout must be >= 0")
	}
	if cfg.ShutdownTimeout < 0 {
		issues = append(issues, "shutdown_timeout must be >= 0")
	}
	if cfg.MaxHeaderBytes < 0 {
		issues = append(issues, "max_header_bytes must be >= 0")
	}

	if cfg.LogLevel != "" && !validLogLevel(cfg.LogLevel) {
		issues = append(issues, "log_level must be one of debug|info|warn|error")
	}
	if cfg.LogFormat != "" && !validLogFormat(cfg.LogFormat) {
		issues = append(issues, "log_format must be one of text|json")
	}
	switch cfg.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		issues = append(issues, "environment must be one of development|production|test")
	}

	if cfg.Session.CookieName == "" {
		issues = append(issues, "session.cookie_name is required")
	}
	if cfg.Session.MaxAge <= 0 {
		issues = append(issues, "session.max_age must be > 0")
	}

	switch cfg.Database.Driver {
	case "memory":
	case "sqlite", "postgres":
		if cfg.Database.URL == "" {
			issues = append(issues, "database.url is required for "+cfg.Database.Driver)
		}
	default:
		issues = append(issues, "database.driver must be one of memory|sqlite|postgres")
	}
	if cfg.Database.QueryTimeout < 0 {
		issues = append(issues, "database.query_timeout must be >= 0")
	}

	switch cfg.Password.Algorithm {
	case "bcrypt", "argon2id":
	default:
		issues = append(issues, "password.algorithm must be one of bcrypt|argon2id")
	}

	if cfg.Security.HSTSMaxAge < 0 {
		issues = append(issues, "security.hsts_max_age must be >= 0")
	}

	if len(cfg.SessionSecrets()) == 0 {
		if len(issues) > 0 {
			return fmt.Errorf("%w; %s", ErrSessionSecretRequired, strings.Join(issues, "; "))
		}
		return ErrSessionSecretRequired
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validLogFormat(format string) bool {
	switch format {
	case "text", "json":
		return true
	default:
		return false
	}
}
