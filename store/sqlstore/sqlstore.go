// Package sqlstore implements store.Store on database/sql for PostgreSQL
// (pgx) and SQLite (pure Go driver).
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/devmarvs/jokebox/db"
	"github.com/devmarvs/jokebox/store"
	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Dialect selects the SQL flavour and driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ErrUnknownDialect reports an unsupported dialect.
var ErrUnknownDialect = errors.New("unknown sql dialect")

func (d Dialect) driver() (string, error) {
	switch d {
	case Postgres:
		return "pgx", nil
	case SQLite:
		return "sqlite", nil
	default:
		return "", ErrUnknownDialect
	}
}

// Options configures Open.
type Options struct {
	Dialect      Dialect
	DSN          string
	Pool         db.Options
	QueryTimeout time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

// Store is a SQL-backed store.Store.
type Store struct {
	conn    *sql.DB
	q       db.QueryDB
	dialect Dialect
	helper  db.Helper
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects to the database described by options.
func Open(ctx context.Context, options Options) (*Store, error) {
	driver, err := options.Dialect.driver()
	if err != nil {
		return nil, err
	}

	dsn := options.DSN
	pool := options.Pool
	if options.Dialect == SQLite {
		dsn = sqliteDSN(dsn)
		// In-memory SQLite databases are per connection.
		pool.MaxOpenConns = 1
	}

	conn, err := db.Open(ctx, driver, dsn, pool)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", options.Dialect, err)
	}
	return New(conn, options), nil
}

// sqliteForeignKeys turns on foreign key enforcement, which SQLite leaves
// off for every new connection.
const sqliteForeignKeys = "_pragma=foreign_keys(1)"

// sqliteDSN appends the foreign key pragma unless dsn already enables it.
// Pragmas run in order, so it also overrides an explicit foreign_keys(0).
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, sqliteForeignKeys) {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteForeignKeys
	}
	return dsn + "?" + sqliteForeignKeys
}

// New wraps an open connection. For SQLite the caller is responsible for
// enabling foreign keys; Open does it.
func New(conn *sql.DB, options Options) *Store {
	s := &Store{
		conn:    conn,
		q:       conn,
		dialect: options.Dialect,
		helper:  db.Helper{Timeout: options.QueryTimeout},
		now:     options.Now,
	}
	if options.Logger != nil {
		s.q = db.WithQueryHook(conn, db.SlogHook(options.Logger))
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	dir := "migrations/" + string(s.dialect)
	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, err
	}

	dialect := goose.DialectPostgres
	if s.dialect == SQLite {
		dialect = goose.DialectSQLite3
	}

	provider, err := goose.NewProvider(dialect, s.conn, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	applied := make([]string, 0, len(results))
	for _, result := range results {
		applied = append(applied, result.Source.Path)
	}
	return applied, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) CreateUser(ctx context.Context, in store.NewUser) (*store.User, error) {
	now := s.now().UTC()
	user := store.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.helper.Exec(ctx, s.q, s.rebind(
		`INSERT INTO users (id, username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*store.User, error) {
	return s.userWhere(ctx, "id", id)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.userWhere(ctx, "username", username)
}

func (s *Store) userWhere(ctx context.Context, column, value string) (*store.User, error) {
	row, cancel := s.helper.QueryRow(ctx, s.q, s.rebind(
		`SELECT id, username, password_hash, created_at, updated_at FROM users WHERE `+column+` = ?`),
		value,
	)
	defer cancel()

	var user store.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, timestamp{&user.CreatedAt}, timestamp{&user.UpdatedAt}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateJoke(ctx context.Context, in store.NewJoke) (*store.Joke, error) {
	now := s.now().UTC()
	joke := store.Joke{
		ID:         uuid.NewString(),
		JokesterID: in.JokesterID,
		Name:       in.Name,
		Content:    in.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.helper.Exec(ctx, s.q, s.rebind(
		`INSERT INTO jokes (id, jokester_id, name, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		joke.ID, joke.JokesterID, joke.Name, joke.Content, joke.CreatedAt, joke.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &joke, nil
}

const jokeColumns = `id, jokester_id, name, content, created_at, updated_at`

func (s *Store) JokeByID(ctx context.Context, id string) (*store.Joke, error) {
	row, cancel := s.helper.QueryRow(ctx, s.q, s.rebind(`SELECT `+jokeColumns+` FROM jokes WHERE id = ?`), id)
	defer cancel()
	return scanJoke(row)
}

func (s *Store) DeleteJoke(ctx context.Context, id string) error {
	result, err := s.helper.Exec(ctx, s.q, s.rebind(`DELETE FROM jokes WHERE id = ?`), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountJokes(ctx context.Context) (int, error) {
	row, cancel := s.helper.QueryRow(ctx, s.q, `SELECT COUNT(*) FROM jokes`)
	defer cancel()

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) JokeAt(ctx context.Context, offset int) (*store.Joke, error) {
	if offset < 0 {
		return nil, store.ErrNotFound
	}
	row, cancel := s.helper.QueryRow(ctx, s.q, s.rebind(
		`SELECT `+jokeColumns+` FROM jokes ORDER BY created_at, id LIMIT 1 OFFSET ?`), offset)
	defer cancel()
	return scanJoke(row)
}

func (s *Store) LatestJokes(ctx context.Context, limit int) ([]store.Joke, error) {
	if limit <= 0 {
		return []store.Joke{}, nil
	}
	rows, cancel, err := s.helper.Query(ctx, s.q, s.rebind(
		`SELECT `+jokeColumns+` FROM jokes ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	jokes := []store.Joke{}
	for rows.Next() {
		var joke store.Joke
		if err := rows.Scan(&joke.ID, &joke.JokesterID, &joke.Name, &joke.Content, timestamp{&joke.CreatedAt}, timestamp{&joke.UpdatedAt}); err != nil {
			return nil, err
		}
		jokes = append(jokes, joke)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jokes, nil
}

func scanJoke(row *sql.Row) (*store.Joke, error) {
	var joke store.Joke
	if err := row.Scan(&joke.ID, &joke.JokesterID, &joke.Name, &joke.Content, timestamp{&joke.CreatedAt}, timestamp{&joke.UpdatedAt}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &joke, nil
}

func (s *Store) rebind(query string) string {
	if s.dialect == Postgres {
		return db.Rebind(query)
	}
	return query
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") || strings.Contains(message, "duplicate key")
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
