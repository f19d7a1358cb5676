// Package store provides the durable key-value state shared by every
// relic process on the machine.
//
// Each opened window is an independent host process, so registry state
// cannot live in process memory. The store is a small SQLite database
// (modernc.org/sqlite, pure Go — no cgo) holding whole-collection values
// under fixed keys; registries read the full collection, modify it, and
// write it back on every mutation. Concurrent writers resolve to
// last-writer-wins by design: contention is human-paced and the accepted
// consistency model tolerates it (reconciliation, not locking, handles
// the rare crash between related updates).
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Registry keys. Exactly two collections live in the store; there are no
// cross-key transactions.
const (
	// KeyWorktrees holds the ordered collection of worktree records.
	KeyWorktrees = "worktrees"

	// KeyPairs holds the ordered collection of window pairs.
	KeyPairs = "pairs"
)

// Store is a handle to the shared state database.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath resolves the state database location under the user config
// directory, falling back to the temp directory when no config directory
// is resolvable (persistence is then limited to the current boot, which
// degrades gracefully: stale-checkout reconciliation re-derives state
// from the filesystem).
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "relic", "state.db")
}

// Open opens (creating if necessary) the state database at path.
//
// A single connection with a busy timeout is enough: operations are
// interactive and short, and SQLite serializes cross-process writers for
// us, which is exactly the last-writer-wins behavior we accept.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) init() error {
	statements := []string{
		// Writers in other windows may hold the database briefly.
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return fmt.Errorf("state database init failed: %w", err)
		}
	}
	return nil
}

// Get returns the value stored under key, or nil when the key has never
// been written. A missing key is not an error — registries treat it as an
// empty collection.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state key %q: %w", key, err)
	}
	return value, nil
}

// Put replaces the value stored under key. The whole collection is
// rewritten on every mutation; the last writer wins.
func (s *Store) Put(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write state key %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the store. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete state key %q: %w", key, err)
	}
	return nil
}
