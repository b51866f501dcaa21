package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Execer runs exec statements with context.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Queryer runs queries with context.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// QueryRower runs row queries with context.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QueryDB groups the query interfaces.
type QueryDB interface {
	Execer
	Queryer
	QueryRower
}

// Helper wraps query helpers with a default timeout.
type Helper struct {
	Timeout time.Duration
}

// Exec runs an exec statement with timeout.
func (h Helper) Exec(ctx context.Context, db Execer, query string, args ...any) (sql.Result, error) {
	ctx, cancel := WithTimeout(ctx, h.Timeout)
	defer cancel()
	return db.ExecContext(ctx, query, args...)
}

// Query runs a query with timeout. The returned cancel must be called
// once the rows are consumed.
func (h Helper) Query(ctx context.Context, db Queryer, query string, args ...any) (*sql.Rows, context.CancelFunc, error) {
	ctx, cancel := WithTimeout(ctx, h.Timeout)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, func() {}, err
	}
	return rows, cancel, nil
}

// QueryRow runs a row query with timeout.
func (h Helper) QueryRow(ctx context.Context, db QueryRower, query string, args ...any) (*sql.Row, context.CancelFunc) {
	ctx, cancel := WithTimeout(ctx, h.Timeout)
	return db.QueryRowContext(ctx, query, args...), cancel
}

// WithTimeout returns a context with timeout when provided.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Rebind rewrites '?' placeholders to '$1', '$2', ... for drivers that
// require numbered parameters. Placeholders inside quoted literals are left
// alone.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
