// Package types provides request payload definitions with boundary
// validation for the tracker API. Each payload validates itself once, at
// decode time; the engines can then trust the field ranges.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// RegisterRequest represents a user registration payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Validate validates the RegisterRequest
func (r *RegisterRequest) Validate() error {
	return validate.Struct(r)
}

// LoginRequest represents a login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the LoginRequest
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// CreateJobRequest represents the payload for creating a job opportunity
type CreateJobRequest struct {
	Title    string     `json:"title" validate:"required,min=1"`
	Company  string     `json:"company" validate:"required,min=1"`
	Status   string     `json:"status,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Validate validates the CreateJobRequest
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateJobRequest represents generic (non-lifecycle) job field updates
type UpdateJobRequest struct {
	Title    *string    `json:"title,omitempty" validate:"omitempty,min=1"`
	Company  *string    `json:"company,omitempty" validate:"omitempty,min=1"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Validate validates the UpdateJobRequest
func (r *UpdateJobRequest) Validate() error {
	return validate.Struct(r)
}

// IngestJobRequest asks the server to create a job from a posting URL
type IngestJobRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// Validate validates the IngestJobRequest
func (r *IngestJobRequest) Validate() error {
	return validate.Struct(r)
}

// ArchiveJobRequest represents the archive payload
type ArchiveJobRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// BulkArchiveRequest represents the bulk-archive payload
type BulkArchiveRequest struct {
	JobIDs []uuid.UUID `json:"jobIds" validate:"required,min=1"`
	Reason *string     `json:"reason,omitempty"`
}

// Validate validates the BulkArchiveRequest
func (r *BulkArchiveRequest) Validate() error {
	return validate.Struct(r)
}

// RestoreJobRequest represents the restore payload
type RestoreJobRequest struct {
	RestoreToStatus *string `json:"restoreToStatus,omitempty"`
}

// DeleteJobRequest represents the permanent-delete payload. The lifecycle
// engine rejects the delete unless ConfirmDelete is explicitly true.
type DeleteJobRequest struct {
	ConfirmDelete bool `json:"confirmDelete"`
}

// CreateContactRequest represents the payload for creating a contact
type CreateContactRequest struct {
	Name                 string     `json:"name" validate:"required,min=1"`
	Email                *string    `json:"email,omitempty" validate:"omitempty,email"`
	Company              *string    `json:"company,omitempty"`
	RelationshipStrength *int       `json:"relationship_strength,omitempty" validate:"omitempty,gte=0,lte=100"`
	LastContactDate      *time.Time `json:"last_contact_date,omitempty"`
}

// Validate validates the CreateContactRequest
func (r *CreateContactRequest) Validate() error {
	return validate.Struct(r)
}

// CreateReferralRequest represents the payload for creating a referral
// request.
type CreateReferralRequest struct {
	JobID              uuid.UUID  `json:"job_id" validate:"required"`
	ContactID          uuid.UUID  `json:"contact_id" validate:"required"`
	Status             *string    `json:"status,omitempty" validate:"omitempty,oneof=draft pending sent accepted declined completed expired"`
	RequestMessage     *string    `json:"request_message,omitempty"`
	TemplateUsed       *string    `json:"template_used,omitempty"`
	RequestDate        *time.Time `json:"request_date,omitempty"`
	FollowUpDate       *time.Time `json:"follow_up_date,omitempty"`
	NextFollowUpDate   *time.Time `json:"next_follow_up_date,omitempty"`
	RelationshipImpact *int       `json:"relationship_impact,omitempty" validate:"omitempty,gte=-10,lte=10"`
	GratitudeExpressed bool       `json:"gratitude_expressed,omitempty"`
	GratitudeNotes     *string    `json:"gratitude_notes,omitempty"`
	OptimalTimingScore *int       `json:"optimal_timing_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	TimingReason       *string    `json:"timing_reason,omitempty"`
}

// Validate validates the CreateReferralRequest
func (r *CreateReferralRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateReferralRequest represents a partial referral request update. All
// fields are optional; status changes trigger the workflow engine's
// transition effects.
type UpdateReferralRequest struct {
	Status             *string    `json:"status,omitempty" validate:"omitempty,oneof=draft pending sent accepted declined completed expired"`
	RequestMessage     *string    `json:"request_message,omitempty"`
	TemplateUsed       *string    `json:"template_used,omitempty"`
	RequestDate        *time.Time `json:"request_date,omitempty"`
	SentDate           *time.Time `json:"sent_date,omitempty"`
	ResponseDate       *time.Time `json:"response_date,omitempty"`
	FollowUpDate       *time.Time `json:"follow_up_date,omitempty"`
	NextFollowUpDate   *time.Time `json:"next_follow_up_date,omitempty"`
	Outcome            *string    `json:"outcome,omitempty"`
	Success            *bool      `json:"success,omitempty"`
	RelationshipImpact *int       `json:"relationship_impact,omitempty" validate:"omitempty,gte=-10,lte=10"`
	GratitudeExpressed *bool      `json:"gratitude_expressed,omitempty"`
	GratitudeNotes     *string    `json:"gratitude_notes,omitempty"`
	OptimalTimingScore *int       `json:"optimal_timing_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	TimingReason       *string    `json:"timing_reason,omitempty"`
}

// Validate validates the UpdateReferralRequest
func (r *UpdateReferralRequest) Validate() error {
	return validate.Struct(r)
}
