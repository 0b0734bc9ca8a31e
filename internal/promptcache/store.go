package promptcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"logomatch/internal/failures"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Older databases must be
// removed with 'logomatch clean'.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by another schema version.
var ErrSchemaMismatch = errors.New("prompt cache schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Choice is one persisted prompt option.
type Choice struct {
	Label string  `json:"label"`
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

// Record is one persisted prompt.
type Record struct {
	ID      string
	Query   string
	Message string
	Choices []Choice
}

// Store is the SQLite-backed prompt cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(path) == "" {
		return nil, failures.Wrap(failures.ErrConfiguration, "promptcache", "open", "prompt cache path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create prompt cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Load returns the stored batch in source order. ok is false when nothing is
// stored or the stored batch was built from different inputs.
func (s *Store) Load(ctx context.Context, fingerprint string) ([]Record, bool, error) {
	ctx = ensureContext(ctx)
	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT fingerprint FROM batches WHERE id = 1").Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read batch fingerprint: %w", err)
	}
	if stored != fingerprint {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source_id, query, message, choices FROM prompts ORDER BY position")
	if err != nil {
		return nil, false, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			choices string
		)
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Message, &choices); err != nil {
			return nil, false, fmt.Errorf("scan prompt: %w", err)
		}
		if err := json.Unmarshal([]byte(choices), &rec.Choices); err != nil {
			return nil, false, fmt.Errorf("decode choices for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate prompts: %w", err)
	}
	return records, true, nil
}

// Save replaces the stored batch with records.
func (s *Store) Save(ctx context.Context, fingerprint string, records []Record) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM prompts"); err != nil {
			return fmt.Errorf("clear prompts: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO prompts (position, source_id, query, message, choices) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for i, rec := range records {
			choices := rec.Choices
			if choices == nil {
				choices = []Choice{}
			}
			encoded, err := json.Marshal(choices)
			if err != nil {
				return fmt.Errorf("encode choices for %s: %w", rec.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, i, rec.ID, rec.Query, rec.Message, string(encoded)); err != nil {
				return fmt.Errorf("insert prompt %s: %w", rec.ID, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO batches (id, fingerprint, created_at) VALUES (1, ?, ?) "+
				"ON CONFLICT(id) DO UPDATE SET fingerprint = excluded.fingerprint, created_at = excluded.created_at",
			fingerprint, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record batch: %w", err)
		}
		return tx.Commit()
	})
}

// Count returns the number of stored prompts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM prompts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count prompts: %w", err)
	}
	return n, nil
}

// Remove deletes the database at path together with its WAL side files. It
// reports whether anything was removed.
func Remove(path string) (bool, error) {
	removed := false
	for _, target := range []string{path, path + "-wal", path + "-shm"} {
		err := os.Remove(target)
		switch {
		case err == nil:
			removed = true
		case errors.Is(err, os.ErrNotExist):
		default:
			return removed, fmt.Errorf("remove %s: %w", target, err)
		}
	}
	return removed, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'logomatch clean')",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
