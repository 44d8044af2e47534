package db

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants. currentStatus is free-form text; these are the two
// values the lifecycle engine itself assigns.
const (
	JobStatusInterested = "interested"
	JobStatusArchived   = "archived"
)

// JobOpportunity represents one tracked job
type JobOpportunity struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Title         string     `json:"title"`
	Company       string     `json:"company"`
	CurrentStatus string     `json:"current_status"`
	ArchiveReason *string    `json:"archive_reason,omitempty"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	SourceURL     *string    `json:"source_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsArchived reports whether the job is currently archived
func (j *JobOpportunity) IsArchived() bool {
	return j.CurrentStatus == JobStatusArchived
}

// OwnedBy reports whether the job belongs to the given user
func (j *JobOpportunity) OwnedBy(userID uuid.UUID) bool {
	return j.UserID == userID
}

// ApplicationHistoryEntry is an append-only audit record of a status change.
// Entries are only ever created; job deletion removes them by cascade.
type ApplicationHistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JobCreateInput holds the fields for creating a job opportunity
type JobCreateInput struct {
	UserID    uuid.UUID
	Title     string
	Company   string
	Status    string
	Deadline  *time.Time
	SourceURL *string
}

// JobUpdateInput holds optional generic field updates. Status and archive
// fields are excluded here; those change only through the lifecycle engine.
type JobUpdateInput struct {
	Title    *string
	Company  *string
	Deadline *time.Time
}

// ListJobsOptions contains filters for listing jobs
type ListJobsOptions struct {
	Status string
	Limit  int
	Offset int
}
