// Package history persists a record of every completed scan in SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/repoquill/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// RunRecord is one completed scan
type RunRecord struct {
	ID            int64
	RunID         string
	RootPath      string
	Format        string
	StartedAt     time.Time
	Duration      time.Duration
	TotalFiles    int
	FullFiles     int
	TreeOnlyFiles int
	TotalBytes    int64
	ErrorCount    int
}

// NewRunRecord summarizes a finished run
func NewRunRecord(cfg models.ScanConfig, result *models.Result) RunRecord {
	return RunRecord{
		RunID:         result.RunID,
		RootPath:      cfg.RootPath,
		Format:        cfg.Format,
		StartedAt:     result.StartedAt,
		Duration:      result.Duration,
		TotalFiles:    result.TotalFiles,
		FullFiles:     result.FullFiles,
		TreeOnlyFiles: result.TreeOnlyFiles,
		TotalBytes:    result.TotalBytes,
		ErrorCount:    len(result.Errors),
	}
}

// Store manages the run history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the database at dbPath, creating parent directories
// for file-backed databases.
func Open(dbPath string) (*Store, error) {
	if dbPath != MemoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == MemoryPath {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a run and returns its row id
func (s *Store) Record(ctx context.Context, rec RunRecord) (int64, error) {
	if rec.RunID == "" {
		return 0, errors.New("run id is required")
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, root_path, format, started_at, duration_ms,
			total_files, full_files, tree_only_files, total_bytes, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.RootPath, rec.Format, rec.StartedAt.UTC(), rec.Duration.Milliseconds(),
		rec.TotalFiles, rec.FullFiles, rec.TreeOnlyFiles, rec.TotalBytes, rec.ErrorCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get run row id: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first. limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, run_id, root_path, format, started_at, duration_ms,
			total_files, full_files, tree_only_files, total_bytes, error_count
		FROM runs
		ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.RootPath, &rec.Format, &rec.StartedAt, &durationMs,
			&rec.TotalFiles, &rec.FullFiles, &rec.TreeOnlyFiles, &rec.TotalBytes, &rec.ErrorCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}
