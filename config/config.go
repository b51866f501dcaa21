package config

import (
	"strings"
	"time"

	"github.com/devmarvs/jokebox/security"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds app configuration.
type Config struct {
	Address           string        `mapstructure:"address"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`

	Environment string `mapstructure:"environment"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Session  Session  `mapstructure:"session"`
	Database Database `mapstructure:"database"`
	Password Password `mapstructure:"password"`
	Security Security `mapstructure:"security"`
}

// Session configures the signed session cookie.
type Session struct {
	CookieName string `mapstructure:"cookie_name"`
	// Secret is a single signing secret, kept for SESSION_SECRET style
	// deployments. It signs ahead of Secrets when both are set.
	Secret  string        `mapstructure:"secret"`
	Secrets []string      `mapstructure:"secrets"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

// Database selects and tunes the store backend.
type Database struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// Password configures credential hashing.
type Password struct {
	Algorithm  string `mapstructure:"algorithm"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

// Security configures the security response headers.
type Security struct {
	ContentSecurityPolicy string `mapstructure:"content_security_policy"`
	// HSTSMaxAge is sent as Strict-Transport-Security in production only.
	// Zero disables the header.
	HSTSMaxAge            time.Duration `mapstructure:"hsts_max_age"`
	HSTSIncludeSubdomains bool          `mapstructure:"hsts_include_subdomains"`
}

// Default returns safe defaults. The session secret has no default.
func Default() Config {
	return Config{
		Address:           ":8080",
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Environment:       EnvDevelopment,
		LogLevel:          "info",
		LogFormat:         "text",
		Session: Session{
			CookieName: "RJ_session",
			MaxAge:     30 * 24 * time.Hour,
		},
		Database: Database{
			Driver:          "memory",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    5 * time.Second,
		},
		Password: Password{
			Algorithm:  "bcrypt",
			BcryptCost: 10,
		},
		Security: Security{
			ContentSecurityPolicy: security.APIPolicy().String(),
			HSTSMaxAge:            2 * 365 * 24 * time.Hour,
			HSTSIncludeSubdomains: true,
		},
	}
}

// Normalize trims and lowercases the enumerated settings so that
// validation and the code that switches on them agree.
func (c *Config) Normalize() {
	c.Environment = normalizeName(c.Environment)
	c.LogLevel = normalizeName(c.LogLevel)
	c.LogFormat = normalizeName(c.LogFormat)
	c.Database.Driver = normalizeName(c.Database.Driver)
	c.Password.Algorithm = normalizeName(c.Password.Algorithm)
}

func normalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// IsProduction reports whether the process runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// SessionSecrets returns the configured secrets, signing secret first,
// with blanks dropped.
func (c Config) SessionSecrets() [][]byte {
	var out [][]byte
	if secret := strings.TrimSpace(c.Session.Secret); secret != "" {
		out = append(out, []byte(secret))
	}
	for _, secret := range c.Session.Secrets {
		if secret = strings.TrimSpace(secret); secret != "" {
			out = append(out, []byte(secret))
		}
	}
	return out
}
