// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists one diagnostics row per handled chat request in
// SQLite. The pipeline only writes; the jobs command and the HTTP API read.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-match/pkg/types"
)

// DefaultLimit caps List when the caller passes no limit.
const DefaultLimit = 50

// Store is the SQLite job ledger.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL UNIQUE,
			job_id TEXT,
			conversation_id TEXT,
			query TEXT NOT NULL,
			status TEXT,
			error_code INTEGER,
			error_msg TEXT,
			attempts INTEGER NOT NULL DEFAULT 0,
			professors INTEGER NOT NULL DEFAULT 0,
			intent TEXT,
			shape TEXT,
			code INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_started_at ON jobs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts rec, replacing any earlier row with the same request id.
func (s *Store) Record(ctx context.Context, rec types.JobRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO jobs
			(request_id, job_id, conversation_id, query, status, error_code, error_msg,
			 attempts, professors, intent, shape, code, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.JobID, rec.ConversationID, rec.Query, string(rec.Status),
		rec.ErrorCode, rec.ErrorMsg, rec.Attempts, rec.Professors, string(rec.Intent),
		rec.Shape, rec.Code, formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("recording job %s: %w", rec.RequestID, err)
	}
	return nil
}

// Filter narrows List.
type Filter struct {
	// Status keeps only rows with this final job status.
	Status types.JobStatus

	// Limit caps the rows returned; zero means DefaultLimit.
	Limit int
}

// List returns the most recent rows first.
func (s *Store) List(ctx context.Context, f Filter) ([]types.JobRecord, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	query := `SELECT request_id, job_id, conversation_id, query, status, error_code, error_msg,
		attempts, professors, intent, shape, code, started_at, finished_at FROM jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []types.JobRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns the row for requestID, or sql.ErrNoRows wrapped.
func (s *Store) Get(ctx context.Context, requestID string) (types.JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT request_id, job_id, conversation_id, query, status, error_code, error_msg,
			attempts, professors, intent, shape, code, started_at, finished_at
		FROM jobs WHERE request_id = ?`, requestID)
	rec, err := scanRecord(row)
	if err != nil {
		return types.JobRecord{}, fmt.Errorf("getting job %s: %w", requestID, err)
	}
	return rec, nil
}

// Summary counts rows by final job status.
type Summary struct {
	Total    int                     `json:"total" yaml:"total"`
	ByStatus map[types.JobStatus]int `json:"by_status" yaml:"by_status"`
}

// Summarize counts all rows by status.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(status, ''), count(*) FROM jobs GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing jobs: %w", err)
	}
	defer rows.Close()

	sum := Summary{ByStatus: make(map[types.JobStatus]int)}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Summary{}, fmt.Errorf("scanning summary: %w", err)
		}
		sum.ByStatus[types.JobStatus(status)] = n
		sum.Total += n
	}
	return sum, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.JobRecord, error) {
	var (
		rec                           types.JobRecord
		jobID, convID, status, errMsg sql.NullString
		intent, shape                 sql.NullString
		errCode                       sql.NullInt64
		startedAt, finishedAt         string
	)
	if err := sc.Scan(&rec.RequestID, &jobID, &convID, &rec.Query, &status, &errCode, &errMsg,
		&rec.Attempts, &rec.Professors, &intent, &shape, &rec.Code, &startedAt, &finishedAt); err != nil {
		return types.JobRecord{}, err
	}
	rec.JobID = jobID.String
	rec.ConversationID = convID.String
	rec.Status = types.JobStatus(status.String)
	rec.ErrorCode = int(errCode.Int64)
	rec.ErrorMsg = errMsg.String
	rec.Intent = types.QueryIntent(intent.String)
	rec.Shape = shape.String
	rec.StartedAt = parseTime(startedAt)
	rec.FinishedAt = parseTime(finishedAt)
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
