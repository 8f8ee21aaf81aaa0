// Package state is the client-local persistence layer: the auth token and a
// cache of recently visited sessions, backed by sqlite. It replaces what a
// browser client would keep in local storage.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const tokenKey = "auth_token"

// Store is the sqlite-backed local state.
type Store struct {
	db *sql.DB
}

// Open creates or opens the local state database and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS sessions (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		topic          TEXT NOT NULL DEFAULT '',
		type           TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT '',
		shareable_code TEXT NOT NULL DEFAULT '',
		visited_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveToken persists the bearer token.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, tokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Token returns the persisted bearer token, or empty when none is stored.
// Satisfies api.TokenSource.
func (s *Store) Token() (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, tokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return value, nil
}

// ClearToken removes the persisted token.
func (s *Store) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// CachedSession is one entry in the visited-sessions cache.
type CachedSession struct {
	ID            string
	Title         string
	Topic         string
	Type          string
	Status        string
	ShareableCode string
	VisitedAt     time.Time
}

// RememberSession upserts a session into the cache, stamping the visit time.
func (s *Store) RememberSession(ctx context.Context, cs CachedSession) error {
	query := `
		INSERT INTO sessions (id, title, topic, type, status, shareable_code, visited_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			topic = excluded.topic,
			type = excluded.type,
			status = excluded.status,
			shareable_code = excluded.shareable_code,
			visited_at = CURRENT_TIMESTAMP
	`
	_, err := s.db.ExecContext(ctx, query, cs.ID, cs.Title, cs.Topic, cs.Type, cs.Status, cs.ShareableCode)
	if err != nil {
		return fmt.Errorf("remember session: %w", err)
	}
	return nil
}

// RecentSessions lists cached sessions, most recently visited first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]CachedSession, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, topic, type, status, shareable_code, visited_at
		FROM sessions ORDER BY visited_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []CachedSession
	for rows.Next() {
		var cs CachedSession
		if err := rows.Scan(&cs.ID, &cs.Title, &cs.Topic, &cs.Type, &cs.Status, &cs.ShareableCode, &cs.VisitedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
