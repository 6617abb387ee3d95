// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/adityaprk/khatabook/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
//
// The handle is guarded by a RWMutex because Restore swaps the underlying
// *sql.DB; everything else takes the read lock and relies on SQLite for
// write serialization.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// New creates a new Store with the given database path. It creates the
// parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, path: dbPath}, nil
}

// open opens the database file, applies pragmas, and runs migrations.
// Pragmas ride the DSN so every pooled connection gets them, not just the
// first.
func open(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// conn returns the current database handle under the read lock.
func (s *Store) conn() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Snapshot writes a consistent copy of the database to w using VACUUM INTO,
// which includes everything committed through the WAL.
func (s *Store) Snapshot(ctx context.Context, w io.Writer) error {
	tmp := filepath.Join(filepath.Dir(s.path), "snapshot-"+uuid.NewString()+".db")
	defer os.Remove(tmp)

	if _, err := s.conn().ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", tmp)); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}

	f, err := os.Open(tmp)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to stream snapshot: %w", err)
	}
	return nil
}

// Restore replaces the database contents with the file read from r. The
// upload is staged to a temporary file in the same directory, the live
// handle is closed, and the stage is renamed over the database file so the
// swap is atomic. The handle is then reopened (running migrations against
// the restored file).
func (s *Store) Restore(ctx context.Context, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := filepath.Join(filepath.Dir(s.path), "restore-"+uuid.NewString()+".db")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to stage restore file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write restore file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close restore file: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close database for restore: %w", err)
	}

	// Stale WAL sidecar files would be replayed against the restored file.
	os.Remove(s.path + "-wal")
	os.Remove(s.path + "-shm")

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		// Reopen the old database so the store stays usable.
		if db, openErr := open(s.path); openErr == nil {
			s.db = db
		}
		return fmt.Errorf("failed to replace database file: %w", err)
	}

	db, err := open(s.path)
	if err != nil {
		return fmt.Errorf("failed to reopen restored database: %w", err)
	}
	s.db = db
	return nil
}
