package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultEnvPrefix is the environment prefix used by the CLI.
const DefaultEnvPrefix = "JOKEBOX"

// Load builds a Config from defaults, then the optional file at path (YAML,
// JSON or TOML by extension), then environment variables named
// <envPrefix>_<KEY> with dots replaced by underscores, e.g.
// JOKEBOX_DATABASE_DRIVER. The bare SESSION_SECRET variable is also read.
// Enumerated settings are normalized; Load does not validate.
func Load(path, envPrefix string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		if err := v.BindEnv("session.secret", envPrefix+"_SESSION_SECRET", "SESSION_SECRET"); err != nil {
			return Config{}, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
			}
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("address", cfg.Address)
	v.SetDefault("read_timeout", cfg.ReadTimeout)
	v.SetDefault("write_timeout", cfg.WriteTimeout)
	v.SetDefault("idle_timeout", cfg.IdleTimeout)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("max_header_bytes", cfg.MaxHeaderBytes)
	v.SetDefault("environment", cfg.Environment)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)

	v.SetDefault("session.cookie_name", cfg.Session.CookieName)
	v.SetDefault("session.secret", cfg.Session.Secret)
	v.SetDefault("session.secrets", cfg.Session.Secrets)
	v.SetDefault("session.max_age", cfg.Session.MaxAge)

	v.SetDefault("database.driver", cfg.Database.Driver)
	v.SetDefault("database.url", cfg.Database.URL)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", cfg.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)
	v.SetDefault("database.query_timeout", cfg.Database.QueryTimeout)
	v.SetDefault("database.auto_migrate", cfg.Database.AutoMigrate)

	v.SetDefault("password.algorithm", cfg.Password.Algorithm)
	v.SetDefault("password.bcrypt_cost", cfg.Password.BcryptCost)

	v.SetDefault("security.content_security_policy", cfg.Security.ContentSecurityPolicy)
	v.SetDefault("security.hsts_max_age", cfg.Security.HSTSMaxAge)
	v.SetDefault("security.hsts_include_subdomains", cfg.Security.HSTSIncludeSubdomains)
}
