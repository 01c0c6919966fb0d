// SPDX-License-Identifier: MPL-2.0

package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

const (
	keySnapshot  = "filesystem"
	keyDirectory = "current_directory"
)

// SQLiteStore keeps state as JSON values in a key/value table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create state table: %w", err)
	}
	return nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

// LoadSnapshot decodes the saved tree.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*vfs.Node, error) {
	var root *vfs.Node
	found, err := s.get(ctx, keySnapshot, &root)
	if err != nil || !found {
		return nil, err
	}
	return root, nil
}

// SaveSnapshot replaces the saved tree.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, root *vfs.Node) error {
	if err := checkEncoding(root); err != nil {
		return err
	}
	return s.put(ctx, keySnapshot, root)
}

// LoadDirectory returns the saved working directory.
func (s *SQLiteStore) LoadDirectory(ctx context.Context) (vpath.Path, error) {
	var cwd vpath.Path
	if _, err := s.get(ctx, keyDirectory, &cwd); err != nil {
		return "", err
	}
	return cwd, nil
}

// SaveDirectory replaces the saved working directory.
func (s *SQLiteStore) SaveDirectory(ctx context.Context, cwd vpath.Path) error {
	if err := checkDirectoryEncoding(cwd); err != nil {
		return err
	}
	return s.put(ctx, keyDirectory, cwd)
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) get(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, key, err)
	}
	return true, nil
}

func (s *SQLiteStore) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO state (key, value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET
		 value = excluded.value,
		 updated_at = CURRENT_TIMESTAMP`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
