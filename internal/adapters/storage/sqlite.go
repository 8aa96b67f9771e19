package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS assignments (
	scope       TEXT NOT NULL,
	key         TEXT NOT NULL,
	value       TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (scope, key)
);
`

// pragmas are applied to the single pooled connection on open.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA synchronous=NORMAL",
}

// SQLiteStore keeps durable local assignments for many visitor scopes.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and runs migrations.
// Access is serialized over one connection so concurrent requests queue in
// the pool instead of failing with SQLITE_BUSY; busy_timeout covers other
// processes sharing the file.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NewScopeID returns a fresh visitor scope id.
func NewScopeID() string {
	return uuid.New().String()
}

// ValidScopeID reports whether id looks like a scope id issued by NewScopeID.
func ValidScopeID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Scope returns the key-value view of one visitor scope.
func (s *SQLiteStore) Scope(scope string) *ScopedStore {
	return &ScopedStore{db: s.db, scope: scope}
}

// ScopedStore is the local storage of one visitor.
type ScopedStore struct {
	db    *sql.DB
	scope string
}

// Get returns the stored value.
func (s *ScopedStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM assignments WHERE scope = ? AND key = ?`,
		s.scope, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query assignment: %w", err)
	}
	return value, true, nil
}

// Set upserts the value. Local storage has no expiry so ttl is ignored.
func (s *ScopedStore) Set(key, value string, _ time.Duration) error {
	_, err := s.db.Exec(
		`INSERT INTO assignments (scope, key, value, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value`,
		s.scope, key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store assignment: %w", err)
	}
	return nil
}

// Clear removes every assignment of the scope.
func (s *ScopedStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM assignments WHERE scope = ?`, s.scope); err != nil {
		return fmt.Errorf("clear scope: %w", err)
	}
	return nil
}
