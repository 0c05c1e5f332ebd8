package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"learnlab/internal/config"
)

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.RunsDatabasePath())
}

// OpenPath opens the run database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: filepath.Clean(dbPath)}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        question TEXT NOT NULL,
        document_id TEXT NOT NULL,
        output_type TEXT NOT NULL,
        status TEXT NOT NULL,
        stage TEXT NOT NULL DEFAULT '',
        audio_url TEXT NOT NULL DEFAULT '',
        error_message TEXT NOT NULL DEFAULT '',
        cache_hit INTEGER NOT NULL DEFAULT 0,
        payload_json TEXT NOT NULL DEFAULT '',
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Create inserts a new run record.
func (s *Store) Create(ctx context.Context, run *Run) error {
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return errors.New("run with id required")
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = StatusProcessing
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, question, document_id, output_type, status, stage,
            audio_url, error_message, cache_hit, payload_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Question,
		run.DocumentID,
		run.OutputType,
		string(run.Status),
		run.Stage,
		run.AudioURL,
		run.ErrorMessage,
		boolToInt(run.CacheHit),
		run.PayloadJSON,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Update persists the mutable fields of an existing run.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return errors.New("run with id required")
	}
	now := time.Now().UTC()
	run.UpdatedAt = now

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET
            status = ?, stage = ?, audio_url = ?, error_message = ?,
            cache_hit = ?, payload_json = ?, updated_at = ?
        WHERE id = ?`,
		string(run.Status),
		run.Stage,
		run.AudioURL,
		run.ErrorMessage,
		boolToInt(run.CacheHit),
		run.PayloadJSON,
		now.Format(time.RFC3339Nano),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update run: no run with id %s", run.ID)
	}
	return nil
}

// GetByID fetches one run.
func (s *Store) GetByID(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, question, document_id, output_type, status, stage,
            audio_url, error_message, cache_hit, payload_json, created_at, updated_at
        FROM runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no run with id %s", id)
	}
	return run, err
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, question, document_id, output_type, status, stage,
            audio_url, error_message, cache_hit, payload_json, created_at, updated_at
        FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var result []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status string
	var cacheHit int
	var createdAt, updatedAt string
	err := row.Scan(
		&run.ID,
		&run.Question,
		&run.DocumentID,
		&run.OutputType,
		&status,
		&run.Stage,
		&run.AudioURL,
		&run.ErrorMessage,
		&cacheHit,
		&run.PayloadJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.CacheHit = cacheHit != 0
	if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		run.CreatedAt = ts
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		run.UpdatedAt = ts
	}
	return &run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
