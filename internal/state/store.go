// Package state persists run history and document fingerprints in SQLite.
// Watch mode uses fingerprints to tell which documents actually changed
// between runs; run rows give operators a local audit trail.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline run.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Docs      int
	Errors    int
	Warnings  int
}

// Store is a SQLite-backed state store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the state database at path.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize state schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		docs INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		warnings INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE TABLE IF NOT EXISTS fingerprints (
		doc_key TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun appends a run row.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, started_at, duration_ms, docs, errors, warnings) VALUES (?, ?, ?, ?, ?, ?)",
		run.ID, run.StartedAt.Unix(), run.Duration.Milliseconds(), run.Docs, run.Errors, run.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// LastRun returns the most recent run, or nil when none is recorded.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT run_id, started_at, duration_ms, docs, errors, warnings FROM runs ORDER BY started_at DESC, run_id DESC LIMIT 1")

	var (
		run        Run
		startedAt  int64
		durationMS int64
	)
	err := row.Scan(&run.ID, &startedAt, &durationMS, &run.Docs, &run.Errors, &run.Warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}

	run.StartedAt = time.Unix(startedAt, 0)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// Fingerprint returns the stored fingerprint for a document key, or "" when
// the document has not been seen.
func (s *Store) Fingerprint(ctx context.Context, docKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM fingerprints WHERE doc_key = ?", docKey)

	var fp string
	err := row.Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query fingerprint: %w", err)
	}
	return fp, nil
}

// SetFingerprint upserts the fingerprint for a document key.
func (s *Store) SetFingerprint(ctx context.Context, docKey, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fingerprints (doc_key, fingerprint, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(doc_key) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
		docKey, fingerprint, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert fingerprint: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
