package db

import (
	"time"

	"github.com/google/uuid"
)

// Referral request status constants
const (
	ReferralStatusDraft     = "draft"
	ReferralStatusPending   = "pending"
	ReferralStatusSent      = "sent"
	ReferralStatusAccepted  = "accepted"
	ReferralStatusDeclined  = "declined"
	ReferralStatusCompleted = "completed"
	ReferralStatusExpired   = "expired"
)

// ReferralStatuses lists every valid referral request status
var ReferralStatuses = []string{
	ReferralStatusDraft,
	ReferralStatusPending,
	ReferralStatusSent,
	ReferralStatusAccepted,
	ReferralStatusDeclined,
	ReferralStatusCompleted,
	ReferralStatusExpired,
}

// ValidReferralStatus reports whether s is one of the seven statuses
func ValidReferralStatus(s string) bool {
	for _, v := range ReferralStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ReferralRequest represents one ask for a referral for a (job, contact) pair
type ReferralRequest struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	JobID            uuid.UUID  `json:"job_id"`
	ContactID        uuid.UUID  `json:"contact_id"`
	Status           string     `json:"status"`
	RequestMessage   *string    `json:"request_message,omitempty"`
	TemplateUsed     *string    `json:"template_used,omitempty"`
	RequestDate      *time.Time `json:"request_date,omitempty"`
	SentDate         *time.Time `json:"sent_date,omitempty"`
	ResponseDate     *time.Time `json:"response_date,omitempty"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty"`
	Outcome          *string    `json:"outcome,omitempty"`
	Success          *bool      `json:"success,omitempty"`

	// RelationshipImpact is the signed delta this request contributes to the
	// contact's relationship strength. ImpactApplied records whether that
	// delta is currently reflected on the contact, so that deletion reverses
	// it exactly once.
	RelationshipImpact *int `json:"relationship_impact,omitempty"`
	ImpactApplied      bool `json:"impact_applied"`

	GratitudeExpressed bool    `json:"gratitude_expressed"`
	GratitudeNotes     *string `json:"gratitude_notes,omitempty"`

	OptimalTimingScore *int    `json:"optimal_timing_score,omitempty"`
	TimingReason       *string `json:"timing_reason,omitempty"`

	ContactName string `json:"contact_name,omitempty"` // joined

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsResponded reports whether the contact has responded to this request
func (r *ReferralRequest) IsResponded() bool {
	switch r.Status {
	case ReferralStatusAccepted, ReferralStatusDeclined, ReferralStatusCompleted:
		return true
	}
	return false
}

// IsSuccessful reports whether this request counts as a success
func (r *ReferralRequest) IsSuccessful() bool {
	if r.Status == ReferralStatusAccepted || r.Status == ReferralStatusCompleted {
		return true
	}
	return r.Success != nil && *r.Success
}

// AppliedImpact returns the delta currently reflected on the contact, or 0
func (r *ReferralRequest) AppliedImpact() int {
	if r.ImpactApplied && r.RelationshipImpact != nil {
		return *r.RelationshipImpact
	}
	return 0
}

// StrengthUpdate carries a contact relationship-strength write that must be
// committed atomically with a referral request write.
type StrengthUpdate struct {
	ContactID uuid.UUID
	Strength  int
}
