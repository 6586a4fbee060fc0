package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run modes stored in analysis_runs.mode.
const (
	ModeFile      = "file"
	ModeDirectory = "directory"
)

// sqliteTimeFormat is the layout of CURRENT_TIMESTAMP values.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// RunRecord represents a row in analysis_runs.
type RunRecord struct {
	ID              string    // UUID assigned by RecordRun when empty
	Mode            string    // ModeFile or ModeDirectory
	Target          string    // Path argument as given
	Model           string    // Token vocabulary used
	FilesFound      int       // Discovered PDFs (1 in file mode)
	FilesProcessed  int       // Successfully counted PDFs
	FilesSkipped    int       // PDFs that failed extraction or counting
	TotalTokens     int       // Sum over processed files
	TotalCharacters int       // Sum over processed files
	ReportPath      string    // Saved markdown report
	CreatedAt       time.Time // Set by the database
}

// FileRecord represents a row in analysis_files. ErrorKind is empty for
// files that were counted.
type FileRecord struct {
	ID           int64
	RunID        string
	Path         string
	Tokens       int
	Characters   int
	Pages        int
	ErrorKind    string
	ErrorMessage string
}

// Repository reads and writes the history tables.
type Repository struct {
	db *Database
}

// NewRepository creates a new Repository instance.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db}
}

// RecordRun inserts a run and its files in one transaction and returns the
// run ID. A new UUID is generated when run.ID is empty.
func (r *Repository) RecordRun(ctx context.Context, run RunRecord, files []FileRecord) (string, error) {
	if r.db == nil {
		return "", fmt.Errorf("database connection is nil")
	}
	conn, err := r.db.conn()
	if err != nil {
		return "", err
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			id, mode, target, model, files_found, files_processed,
			files_skipped, total_tokens, total_characters, report_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Mode,
		run.Target,
		run.Model,
		run.FilesFound,
		run.FilesProcessed,
		run.FilesSkipped,
		run.TotalTokens,
		run.TotalCharacters,
		nullString(run.ReportPath),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert analysis run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_files (
			run_id, path, tokens, characters, pages, error_kind, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			f.Path,
			f.Tokens,
			f.Characters,
			f.Pages,
			nullString(f.ErrorKind),
			nullString(f.ErrorMessage),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert analysis file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit analysis run: %w", err)
	}

	return run.ID, nil
}

// QueryRecentRuns returns the most recent runs, newest first.
func (r *Repository) QueryRecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 10
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id, mode, target, model, files_found, files_processed,
			   files_skipped, total_tokens, total_characters,
			   COALESCE(report_path, ''), created_at
		FROM analysis_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		var createdAt string

		err := rows.Scan(
			&run.ID,
			&run.Mode,
			&run.Target,
			&run.Model,
			&run.FilesFound,
			&run.FilesProcessed,
			&run.FilesSkipped,
			&run.TotalTokens,
			&run.TotalCharacters,
			&run.ReportPath,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run row: %w", err)
		}

		run.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis run rows: %w", err)
	}

	return runs, nil
}

// GetRun returns one run by ID. The error wraps sql.ErrNoRows when the run
// does not exist.
func (r *Repository) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	conn, err := r.db.conn()
	if err != nil {
		return RunRecord{}, err
	}

	var run RunRecord
	var createdAt string
	err = conn.QueryRowContext(ctx, `
		SELECT id, mode, target, model, files_found, files_processed,
			   files_skipped, total_tokens, total_characters,
			   COALESCE(report_path, ''), created_at
		FROM analysis_runs
		WHERE id = ?`, runID).Scan(
		&run.ID,
		&run.Mode,
		&run.Target,
		&run.Model,
		&run.FilesFound,
		&run.FilesProcessed,
		&run.FilesSkipped,
		&run.TotalTokens,
		&run.TotalCharacters,
		&run.ReportPath,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("analysis run %s not found: %w", runID, err)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to query analysis run: %w", err)
	}

	run.CreatedAt = parseTimestamp(createdAt)
	return run, nil
}

// QueryRunFiles returns the files of one run in insertion order.
func (r *Repository) QueryRunFiles(ctx context.Context, runID string) ([]FileRecord, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id, run_id, path, tokens, characters, pages,
			   COALESCE(error_kind, ''), COALESCE(error_message, '')
		FROM analysis_files
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		err := rows.Scan(
			&f.ID,
			&f.RunID,
			&f.Path,
			&f.Tokens,
			&f.Characters,
			&f.Pages,
			&f.ErrorKind,
			&f.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis file row: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis file rows: %w", err)
	}

	return files, nil
}

// CountRuns returns the number of recorded runs.
func (r *Repository) CountRuns(ctx context.Context) (int64, error) {
	return r.count(ctx, "analysis_runs")
}

// CountFiles returns the number of recorded file rows.
func (r *Repository) CountFiles(ctx context.Context) (int64, error) {
	return r.count(ctx, "analysis_files")
}

func (r *Repository) count(ctx context.Context, table string) (int64, error) {
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// parseTimestamp reads a SQLite DATETIME. modernc returns either the stored
// text or an RFC 3339 rendering depending on the column affinity.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{sqliteTimeFormat, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
