package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/devmarvs/jokebox/auth"
	"github.com/devmarvs/jokebox/health"
	"github.com/devmarvs/jokebox/jokes"
	"github.com/devmarvs/jokebox/metrics"
	"github.com/devmarvs/jokebox/password"
	"github.com/devmarvs/jokebox/session"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *cliOptions) *cobra.Command {
	var runMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and block until SIGINT or SIGTERM.

The process refuses to start without a session secret.

Examples:
  # In-memory store, development mode
  SESSION_SECRET=change-me jokebox serve

  # SQLite with migrations applied at startup
  JOKEBOX_DATABASE_DRIVER=sqlite JOKEBOX_DATABASE_URL=file:jokes.db jokebox serve --migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)
			ctx := cmd.Context()

			st, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if runMigrations || cfg.Database.AutoMigrate {
				if _, err := migrate(ctx, st, logger); err != nil {
					return err
				}
			}

			reg := metrics.New()

			codec, err := session.NewCodec(cfg.SessionSecrets()...)
			if err != nil {
				return err
			}
			sessions := session.NewManager(codec, session.Options{
				Name:      cfg.Session.CookieName,
				MaxAge:    cfg.Session.MaxAge,
				Secure:    cfg.IsProduction(),
				OnInvalid: reg.InvalidSession,
			})

			hasher, err := password.New(password.Config{
				Algorithm:  cfg.Password.Algorithm,
				BcryptCost: cfg.Password.BcryptCost,
			})
			if err != nil {
				return fmt.Errorf("password hasher: %w", err)
			}

			checks := health.New(health.WithTimeout(2 * time.Second))
			checks.AddReady("store", health.PingCheck(st))

			app, err := jokes.NewApp(jokes.AppOptions{
				Config: cfg,
				Logger: logger,
				Server: jokes.Options{
					Store:    st,
					Accessor: auth.NewAccessor(sessions, st),
					Auth:     auth.NewService(st, hasher, auth.WithEventRecorder(reg)),
					Metrics:  reg,
					Health:   checks,
				},
			})
			if err != nil {
				return err
			}

			logger.Info("jokebox starting",
				slog.String("version", version),
				slog.String("environment", cfg.Environment),
				slog.String("store", cfg.Database.Driver),
			)
			return app.RunWithSignals()
		},
	}
	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply database migrations before serving")
	return cmd
}
