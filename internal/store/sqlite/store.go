// Package sqlite implements store.Store on SQLite through the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/larderapp/larder-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides SQLite-backed persistence for the Larder server.
type Store struct {
	db     *sql.DB
	q      querier
	tx     *sql.Tx // non-nil inside WithTx
	logger *slog.Logger
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open creates or opens the SQLite database at path.
// Per-connection pragmas travel in the DSN so every pooled connection gets them.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Debug("sqlite store opened", "path", path)
	}

	return &Store{
		db:     db,
		q:      db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	scoped := &Store{db: s.db, q: tx, tx: tx, logger: s.logger, now: s.now}
	if err := fn(scoped); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// formatTime formats a time.Time for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString returns a sql.NullString from a string pointer.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullEmpty stores the empty string as NULL.
func nullEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// jsonArray encodes values as a JSON array bound to a single placeholder and
// expanded in SQL with json_each.
func jsonArray[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode array parameter: %w", err)
	}
	return string(b), nil
}

// mapWriteError converts SQLite constraint failures into store errors.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return store.ErrAlreadyExists.WithCause(err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrInUse.WithCause(err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return store.ErrInvalidInput.WithCause(err)
	default:
		return err
	}
}

// requireAffected returns store.ErrNotFound when an update touched no rows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// absent turns sql.ErrNoRows into the (nil, nil) absent-value convention.
func absent[T any](v *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
