package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devmarvs/jokebox/config"
	"github.com/devmarvs/jokebox/db"
	"github.com/devmarvs/jokebox/logging"
	"github.com/devmarvs/jokebox/store"
	"github.com/devmarvs/jokebox/store/memory"
	"github.com/devmarvs/jokebox/store/sqlstore"
	"github.com/spf13/cobra"
)

// cliOptions holds the persistent flags.
type cliOptions struct {
	configFile string
	envPrefix  string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{envPrefix: config.DefaultEnvPrefix}

	root := &cobra.Command{
		Use:   "jokebox",
		Short: "jokebox - a multi-user joke catalogue",
		Long: `jokebox serves a small joke catalogue where registered users submit
jokes and may delete only their own.

Configuration is read from an optional file (--config) and from
environment variables named JOKEBOX_<SECTION>_<KEY>, for example
JOKEBOX_DATABASE_DRIVER=sqlite. A session secret is required
(JOKEBOX_SESSION_SECRET or SESSION_SECRET).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newHashPasswordCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads and validates configuration.
func (o *cliOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configFile, o.envPrefix)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return logging.NewLogger(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
}

// migrator is implemented by stores with a schema.
type migrator interface {
	Migrate(ctx context.Context) ([]string, error)
}

// openStore opens the configured store.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Database.Driver {
	case "", "memory":
		return memory.New(), nil
	case string(sqlstore.Postgres), string(sqlstore.SQLite):
		st, err := sqlstore.Open(ctx, sqlstore.Options{
			Dialect: sqlstore.Dialect(cfg.Database.Driver),
			DSN:     cfg.Database.URL,
			Pool: db.Options{
				MaxOpenConns:    cfg.Database.MaxOpenConns,
				MaxIdleConns:    cfg.Database.MaxIdleConns,
				ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			},
			QueryTimeout: cfg.Database.QueryTimeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// migrate applies migrations when st has a schema and reports what ran.
func migrate(ctx context.Context, st store.Store, logger *slog.Logger) ([]string, error) {
	m, ok := st.(migrator)
	if !ok {
		return nil, nil
	}
	applied, err := m.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("migrations applied", slog.Int("count", len(applied)))
	return applied, nil
}
