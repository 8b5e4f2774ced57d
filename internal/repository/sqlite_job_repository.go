package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// MessageInterrupted is recorded on jobs that were in flight when the process stopped.
const MessageInterrupted = "Download failed: interrupted by restart"

// SQLiteJobRepository implements JobRepository on a SQLite database so job
// history survives restarts.
type SQLiteJobRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteJobRepository opens (or creates) the database at path. Jobs left
// pending or running by a previous process are marked failed.
func NewSQLiteJobRepository(ctx context.Context, path string) (*SQLiteJobRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers and keeps PRAGMAs in effect.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			message TEXT NOT NULL,
			url TEXT NOT NULL,
			format_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_state ON jobs(state);
		CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	r := &SQLiteJobRepository{db: db, now: time.Now}

	if _, err := db.ExecContext(ctx,
		`UPDATE jobs SET state = ?, message = ?, updated_at = ? WHERE state IN (?, ?)`,
		domain.JobStateFailed, MessageInterrupted, r.now().UnixNano(),
		domain.JobStatePending, domain.JobStateRunning,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("recover interrupted jobs: %w", err)
	}

	return r, nil
}

// Close closes the underlying database.
func (r *SQLiteJobRepository) Close() error {
	return r.db.Close()
}

// Create registers a new pending job under a fresh UUID.
func (r *SQLiteJobRepository) Create(ctx context.Context, url, formatID string) (*domain.Job, error) {
	job := domain.NewJob(domain.JobID(uuid.New().String()), url, formatID)
	job.CreatedAt = r.now()
	job.UpdatedAt = job.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, state, message, url, format_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.State, job.Message, job.URL, job.FormatID,
		job.CreatedAt.UnixNano(), job.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return job, nil
}

// Transition moves a job to a new state inside a transaction.
func (r *SQLiteJobRepository) Transition(ctx context.Context, id domain.JobID, to domain.JobState, message string) (*domain.Job, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	job, err := scanJob(tx.QueryRowContext(ctx, selectJob+` WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := job.Transition(to, message); err != nil {
		return nil, err
	}
	job.UpdatedAt = r.now()

	if _, err := tx.ExecContext(ctx,
		`UPDATE jobs SET state = ?, message = ?, updated_at = ? WHERE id = ?`,
		job.State, job.Message, job.UpdatedAt.UnixNano(), job.ID,
	); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}

	return job, nil
}

// Get retrieves a job by ID.
func (r *SQLiteJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	return scanJob(r.db.QueryRowContext(ctx, selectJob+` WHERE id = ?`, id))
}

// List returns jobs newest first, optionally filtered by state.
func (r *SQLiteJobRepository) List(ctx context.Context, state *domain.JobState, limit, offset int) ([]*domain.Job, error) {
	query := selectJob
	var args []any
	if state != nil {
		query += ` WHERE state = ?`
		args = append(args, *state)
	}
	query += ` ORDER BY created_at DESC, id ASC`
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}

	return jobs, nil
}

// Stats returns job counts per state.
func (r *SQLiteJobRepository) Stats(ctx context.Context) (*QueueStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := &QueueStats{}
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.add(domain.JobState(state), n)
	}

	return stats, rows.Err()
}

// EvictBefore deletes terminal jobs last updated before cutoff.
func (r *SQLiteJobRepository) EvictBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE state IN (?, ?) AND updated_at < ?`,
		domain.JobStateCompleted, domain.JobStateFailed, cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("evict jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

const selectJob = `SELECT id, state, message, url, format_id, created_at, updated_at FROM jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job                  domain.Job
		id, state            string
		createdAt, updatedAt int64
	)
	err := row.Scan(&id, &state, &job.Message, &job.URL, &job.FormatID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	job.ID = domain.JobID(id)
	job.State = domain.JobState(state)
	job.CreatedAt = time.Unix(0, createdAt)
	job.UpdatedAt = time.Unix(0, updatedAt)
	return &job, nil
}
