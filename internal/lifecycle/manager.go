// Package lifecycle orchestrates job opportunity archive, restore, and
// permanent-delete operations, keeping every status change atomic with its
// append-only history entry.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naumansqb/jobtrack/internal/apperr"
	"github.com/naumansqb/jobtrack/internal/db"
)

// Store is the persistence surface the manager needs. *db.DB satisfies it;
// tests substitute an in-memory fake.
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*db.JobOpportunity, error)
	ArchiveJob(ctx context.Context, p db.ArchiveJobParams) (*db.JobOpportunity, error)
	ArchiveJobs(ctx context.Context, p db.BulkArchiveParams) (int, error)
	RestoreJob(ctx context.Context, p db.RestoreJobParams) (*db.JobOpportunity, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
	CountJobsOwned(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int, error)
	CountArchivedJobs(ctx context.Context, ids []uuid.UUID) (int, error)
	RecentHistory(ctx context.Context, jobID uuid.UUID, limit int) ([]db.ApplicationHistoryEntry, error)
}

// Manager owns the job lifecycle state machine
type Manager struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// NewManager creates a lifecycle manager backed by the given store
func NewManager(store Store, log *zap.Logger) *Manager {
	return &Manager{store: store, log: log, now: time.Now}
}

// getOwnedJob loads a job and checks it belongs to userID
func (m *Manager) getOwnedJob(ctx context.Context, jobID, userID uuid.UUID) (*db.JobOpportunity, error) {
	job, err := m.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("failed to load job", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job")
	}
	if !job.OwnedBy(userID) {
		return nil, apperr.Forbidden("job belongs to another user")
	}
	return job, nil
}

// Archive archives a single job, recording the reason in both the job row
// and its history entry.
func (m *Manager) Archive(ctx context.Context, jobID, userID uuid.UUID, reason *string) (*db.JobOpportunity, error) {
	job, err := m.getOwnedJob(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}
	if job.IsArchived() {
		return nil, apperr.InvalidStatus("job is already archived")
	}

	notes := "Job archived"
	if reason != nil && *reason != "" {
		notes = *reason
	}

	archived, err := m.store.ArchiveJob(ctx, db.ArchiveJobParams{
		JobID:      jobID,
		Reason:     reason,
		ArchivedAt: m.now().UTC(),
		Notes:      notes,
	})
	if err != nil {
		return nil, apperr.Internal("failed to archive job", err)
	}

	m.log.Info("job archived",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", userID.String()))
	return archived, nil
}

// BulkArchive archives all the given jobs or none of them. Every job must
// exist, belong to the caller, and not already be archived.
func (m *Manager) BulkArchive(ctx context.Context, jobIDs []uuid.UUID, userID uuid.UUID, reason *string) (int, error) {
	if len(jobIDs) == 0 {
		return 0, apperr.Validation("jobIds must not be empty")
	}

	owned, err := m.store.CountJobsOwned(ctx, jobIDs, userID)
	if err != nil {
		return 0, apperr.Internal("failed to verify job ownership", err)
	}
	if owned != len(jobIDs) {
		return 0, apperr.Forbidden("one or more jobs do not exist or belong to another user")
	}

	alreadyArchived, err := m.store.CountArchivedJobs(ctx, jobIDs)
	if err != nil {
		return 0, apperr.Internal("failed to check archive status", err)
	}
	if alreadyArchived > 0 {
		return 0, apperr.InvalidStatus("one or more jobs are already archived")
	}

	notes := "Job archived"
	if reason != nil && *reason != "" {
		notes = *reason
	}

	count, err := m.store.ArchiveJobs(ctx, db.BulkArchiveParams{
		JobIDs:     jobIDs,
		UserID:     userID,
		Reason:     reason,
		ArchivedAt: m.now().UTC(),
		Notes:      notes,
	})
	if err != nil {
		return 0, apperr.Internal("failed to bulk archive jobs", err)
	}

	m.log.Info("jobs bulk archived",
		zap.Int("count", count),
		zap.String("user_id", userID.String()))
	return count, nil
}

// Restore brings an archived job back. The target status is the explicit
// restoreTo when supplied, otherwise the status held before archiving (read
// from history), otherwise "interested".
func (m *Manager) Restore(ctx context.Context, jobID, userID uuid.UUID, restoreTo *string) (*db.JobOpportunity, error) {
	job, err := m.getOwnedJob(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}
	if !job.IsArchived() {
		return nil, apperr.InvalidStatus("job is not archived")
	}

	target, err := m.resolveRestoreStatus(ctx, jobID, restoreTo)
	if err != nil {
		return nil, err
	}

	restored, err := m.store.RestoreJob(ctx, db.RestoreJobParams{
		JobID:  jobID,
		Status: target,
		Notes:  "Restored from archive to " + target,
	})
	if err != nil {
		return nil, apperr.Internal("failed to restore job", err)
	}

	m.log.Info("job restored",
		zap.String("job_id", jobID.String()),
		zap.String("status", target))
	return restored, nil
}

func (m *Manager) resolveRestoreStatus(ctx context.Context, jobID uuid.UUID, restoreTo *string) (string, error) {
	if restoreTo != nil && *restoreTo != "" {
		return *restoreTo, nil
	}

	// The newest entry is the "archived" one; the one before it holds the
	// pre-archive status.
	entries, err := m.store.RecentHistory(ctx, jobID, 2)
	if err != nil {
		return "", apperr.Internal("failed to load history", err)
	}
	if len(entries) >= 2 {
		return entries[1].Status, nil
	}
	return db.JobStatusInterested, nil
}

// PermanentlyDelete removes a job and everything hanging off it: history,
// referral requests, contact links. The caller must pass confirm=true; there
// is no soft-delete path once this runs.
func (m *Manager) PermanentlyDelete(ctx context.Context, jobID, userID uuid.UUID, confirm bool) error {
	if !confirm {
		return apperr.Validation("confirmDelete must be true to permanently delete a job")
	}

	if _, err := m.getOwnedJob(ctx, jobID, userID); err != nil {
		return err
	}

	if err := m.store.DeleteJob(ctx, jobID); err != nil {
		return apperr.Internal("failed to delete job", err)
	}

	m.log.Info("job permanently deleted",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", userID.String()))
	return nil
}
