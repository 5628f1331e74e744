package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS driver_session (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	token         TEXT    NOT NULL,
	refresh_token TEXT    NOT NULL DEFAULT '',
	driver        TEXT    NOT NULL DEFAULT '',
	saved_at      INTEGER NOT NULL
)`

// SQLiteStore persists the session in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database. Call Migrate before use.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := NewSQLiteStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the session table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate session table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, refresh_token, driver, saved_at FROM driver_session WHERE id = 1`)

	var (
		out     Session
		driver  string
		savedAt int64
	)
	if err := row.Scan(&out.Token, &out.RefreshToken, &driver, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if driver != "" {
		out.Driver = []byte(driver)
	}
	out.SavedAt = time.UnixMilli(savedAt).UTC()
	return &out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO driver_session (id, token, refresh_token, driver, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			refresh_token = excluded.refresh_token,
			driver = excluded.driver,
			saved_at = excluded.saved_at`,
		sess.Token, sess.RefreshToken, string(sess.Driver), sess.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM driver_session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
