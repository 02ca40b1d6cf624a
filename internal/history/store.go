// Package history journals deaccent runs in a SQLite database so past runs
// and the files they rewrote can be listed later.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/deaccent/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when a run id has no journal entry.
var ErrRunNotFound = errors.New("run not found")

// Run is a journaled run summary.
type Run struct {
	ID           string
	Root         string
	DryRun       bool
	StartedAt    time.Time
	Duration     time.Duration
	Scanned      int
	Modified     int
	Failed       int
	Replacements int
}

// FileEntry is a journaled per-file outcome.
type FileEntry struct {
	Path         string
	Status       models.FileStatus
	Replacements int
	ErrorMessage string
}

// Store manages the SQLite run journal
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the journal at dbPath and applies migrations.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across queries
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a run and its changed or failed files in one transaction.
func (s *Store) RecordRun(ctx context.Context, run *models.RunResult) error {
	if run.RunID == "" {
		return fmt.Errorf("record run: empty run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, root, dry_run, started_at, duration_ms, scanned, modified, failed, replacements)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Root, run.DryRun, run.StartedAt.UTC(), run.Duration.Milliseconds(),
		run.Scanned, run.Modified, run.Failed, run.Replacements)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO file_results
		(run_id, path, status, replacements, error_message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, fr := range run.Files {
		var errMsg sql.NullString
		if fr.Error != nil {
			errMsg = sql.NullString{String: fr.Error.Error(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.RunID, fr.Path, string(fr.Status), fr.Replacements, errMsg); err != nil {
			return fmt.Errorf("insert file result %s: %w", fr.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, root, dry_run, started_at, duration_ms, scanned, modified, failed, replacements
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Root, &r.DryRun, &r.StartedAt, &durationMs,
			&r.Scanned, &r.Modified, &r.Failed, &r.Replacements); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRunFiles returns the files journaled for a run, in visit order.
// A unique id prefix is accepted in place of the full id.
func (s *Store) GetRunFiles(ctx context.Context, runID string) ([]FileEntry, error) {
	id, err := s.resolveRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path, status, replacements, COALESCE(error_message, '')
		FROM file_results WHERE run_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query file results: %w", err)
	}
	defer rows.Close()

	var entries []FileEntry
	for rows.Next() {
		var e FileEntry
		var status string
		if err := rows.Scan(&e.Path, &status, &e.Replacements, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan file result: %w", err)
		}
		e.Status = models.FileStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file results: %w", err)
	}
	return entries, nil
}

// resolveRunID expands a run id prefix to the full id.
func (s *Store) resolveRunID(ctx context.Context, prefix string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", fmt.Errorf("query run id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate run ids: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("ambiguous run id prefix %q", prefix)
	}
}
