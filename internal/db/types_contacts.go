package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRelationshipStrength is assumed when a contact has no recorded
// strength yet.
const DefaultRelationshipStrength = 50

// ProfessionalContact represents a person in the user's network
type ProfessionalContact struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Email   *string   `json:"email,omitempty"`
	Company *string   `json:"company,omitempty"`

	// RelationshipStrength is a 0-100 proxy for relationship quality,
	// mutated only through signed deltas from referral requests.
	RelationshipStrength *int       `json:"relationship_strength,omitempty"`
	LastContactDate      *time.Time `json:"last_contact_date,omitempty"`

	LinkedJobIDs []uuid.UUID `json:"linked_job_ids,omitempty"` // joined

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StrengthOrDefault returns the recorded strength, or the default of 50
func (c *ProfessionalContact) StrengthOrDefault() int {
	if c.RelationshipStrength != nil {
		return *c.RelationshipStrength
	}
	return DefaultRelationshipStrength
}

// LinkedTo reports whether the contact is associated with the given job
func (c *ProfessionalContact) LinkedTo(jobID uuid.UUID) bool {
	for _, id := range c.LinkedJobIDs {
		if id == jobID {
			return true
		}
	}
	return false
}

// ContactCreateInput holds the fields for creating a contact
type ContactCreateInput struct {
	UserID               uuid.UUID
	Name                 string
	Email                *string
	Company              *string
	RelationshipStrength *int
	LastContactDate      *time.Time
}
