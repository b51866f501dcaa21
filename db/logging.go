package db

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// QueryHook receives query timing information.
type QueryHook func(ctx context.Context, query string, duration time.Duration, err error)

// LoggedDB wraps a database with a query hook.
type LoggedDB struct {
	DB   QueryDB
	Hook QueryHook
}

// WithQueryHook wraps a database with a query hook.
func WithQueryHook(db QueryDB, hook QueryHook) LoggedDB {
	return LoggedDB{DB: db, Hook: hook}
}

// SlogHook logs every query at debug level and failures at warn. Arguments
// are never logged: they may carry password digests.
func SlogHook(logger *slog.Logger) QueryHook {
	return func(ctx context.Context, query string, duration time.Duration, err error) {
		if logger == nil {
			return
		}
		if err != nil && err != sql.ErrNoRows {
			logger.WarnContext(ctx, "query failed",
				slog.String("query", query),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()),
			)
			return
		}
		logger.DebugContext(ctx, "query", slog.String("query", query), slog.Duration("duration", duration))
	}
}

// ExecContext executes a statement and emits hook timing.
func (l LoggedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := l.DB.ExecContext(ctx, query, args...)
	if l.Hook != nil {
		l.Hook(ctx, query, time.Since(start), err)
	}
	return res, err
}

// QueryContext executes a query and emits hook timing.
func (l LoggedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := l.DB.QueryContext(ctx, query, args...)
	if l.Hook != nil {
		l.Hook(ctx, query, time.Since(start), err)
	}
	return rows, err
}

// QueryRowContext executes a row query and emits hook timing.
func (l LoggedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := l.DB.QueryRowContext(ctx, query, args...)
	if l.Hook != nil {
		l.Hook(ctx, query, time.Since(start), row.Err())
	}
	return row
}
