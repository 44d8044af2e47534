package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, user_id, title, company, current_status, archive_reason,
	        archived_at, deadline, source_url, created_at, updated_at`

func scanJob(row pgx.Row) (*JobOpportunity, error) {
	var j JobOpportunity
	err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.CurrentStatus,
		&j.ArchiveReason, &j.ArchivedAt, &j.Deadline, &j.SourceURL,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a new job opportunity
func (db *DB) CreateJob(ctx context.Context, input *JobCreateInput) (*JobOpportunity, error) {
	status := input.Status
	if status == "" {
		status = JobStatusInterested
	}

	job, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO job_opportunities (user_id, title, company, current_status, deadline, source_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+jobColumns,
		input.UserID, input.Title, input.Company, status, input.Deadline, input.SourceURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a job opportunity by ID
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*JobOpportunity, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_opportunities WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs retrieves a user's jobs with optional status filter and pagination
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID, opts ListJobsOptions) ([]JobOpportunity, int, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if opts.Status != "" {
		where += ` AND current_status = $2`
		args = append(args, opts.Status)
	}

	var total int
	if err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_opportunities `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := db.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM job_opportunities %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobOpportunity
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, nil
}

// UpdateJobFields applies generic (non-lifecycle) field updates
func (db *DB) UpdateJobFields(ctx context.Context, id uuid.UUID, input *JobUpdateInput) (*JobOpportunity, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`UPDATE job_opportunities SET
		     title = COALESCE($2, title),
		     company = COALESCE($3, company),
		     deadline = COALESCE($4, deadline),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		id, input.Title, input.Company, input.Deadline,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// ArchiveJobParams holds the inputs for a single-job archive
type ArchiveJobParams struct {
	JobID      uuid.UUID
	Reason     *string
	ArchivedAt time.Time
	Notes      string
}

// ArchiveJob sets the job to archived and appends its history entry in one
// transaction, so the status and its audit record cannot diverge.
func (db *DB) ArchiveJob(ctx context.Context, p ArchiveJobParams) (*JobOpportunity, error) {
	tx, rollback, err := db.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	job, err := scanJob(tx.QueryRow(ctx,
		`UPDATE job_opportunities SET
		     current_status = $2,
		     archive_reason = $3,
		     archived_at = $4,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		p.JobID, JobStatusArchived, p.Reason, p.ArchivedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to archive job: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO application_history (job_id, status, notes, timestamp)
		 VALUES ($1, $2, $3, $4)`,
		p.JobID, JobStatusArchived, p.Notes, p.ArchivedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append history entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit archive: %w", err)
	}
	return job, nil
}

// BulkArchiveParams holds the inputs for archiving a batch of jobs
type BulkArchiveParams struct {
	JobIDs     []uuid.UUID
	UserID     uuid.UUID
	Reason     *string
	ArchivedAt time.Time
	Notes      string
}

// ArchiveJobs archives every listed job with a shared timestamp and appends
// one identically timestamped history entry per job, all in one transaction.
// Callers validate ownership and current status before invoking.
func (db *DB) ArchiveJobs(ctx context.Context, p BulkArchiveParams) (int, error) {
	tx, rollback, err := db.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer rollback()

	tag, err := tx.Exec(ctx,
		`UPDATE job_opportunities SET
		     current_status = $3,
		     archive_reason = $4,
		     archived_at = $5,
		     updated_at = NOW()
		 WHERE id = ANY($1) AND user_id = $2`,
		p.JobIDs, p.UserID, JobStatusArchived, p.Reason, p.ArchivedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk archive jobs: %w", err)
	}

	for _, jobID := range p.JobIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO application_history (job_id, status, notes, timestamp)
			 VALUES ($1, $2, $3, $4)`,
			jobID, JobStatusArchived, p.Notes, p.ArchivedAt,
		); err != nil {
			return 0, fmt.Errorf("failed to append history entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit bulk archive: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RestoreJobParams holds the inputs for restoring an archived job
type RestoreJobParams struct {
	JobID  uuid.UUID
	Status string
	Notes  string
}

// RestoreJob clears the archive fields, sets the resolved target status, and
// appends the matching history entry in one transaction.
func (db *DB) RestoreJob(ctx context.Context, p RestoreJobParams) (*JobOpportunity, error) {
	tx, rollback, err := db.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	job, err := scanJob(tx.QueryRow(ctx,
		`UPDATE job_opportunities SET
		     current_status = $2,
		     archive_reason = NULL,
		     archived_at = NULL,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		p.JobID, p.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to restore job: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO application_history (job_id, status, notes)
		 VALUES ($1, $2, $3)`,
		p.JobID, p.Status, p.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append history entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit restore: %w", err)
	}
	return job, nil
}

// DeleteJob permanently removes a job; history entries, referral requests,
// and contact links go with it via ON DELETE CASCADE.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM job_opportunities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// CountJobsOwned returns how many of the given IDs resolve to jobs owned by
// the user. A count short of len(ids) means at least one job is missing or
// belongs to someone else.
func (db *DB) CountJobsOwned(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_opportunities WHERE id = ANY($1) AND user_id = $2`,
		ids, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count owned jobs: %w", err)
	}
	return count, nil
}

// CountArchivedJobs returns how many of the given jobs are already archived
func (db *DB) CountArchivedJobs(ctx context.Context, ids []uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_opportunities WHERE id = ANY($1) AND current_status = $2`,
		ids, JobStatusArchived,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count archived jobs: %w", err)
	}
	return count, nil
}

// RecentHistory retrieves the most recent history entries for a job, newest
// first.
func (db *DB) RecentHistory(ctx context.Context, jobID uuid.UUID, limit int) ([]ApplicationHistoryEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, status, notes, timestamp
		 FROM application_history
		 WHERE job_id = $1
		 ORDER BY timestamp DESC
		 LIMIT $2`,
		jobID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []ApplicationHistoryEntry
	for rows.Next() {
		var e ApplicationHistoryEntry
		if err := rows.Scan(&e.ID, &e.JobID, &e.Status, &e.Notes, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
