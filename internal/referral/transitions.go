// Package referral owns the referral-request workflow: the status state
// machine with its derived fields, the relationship-strength ledger on the
// associated contact, the timing scorer, and summary analytics.
package referral

import (
	"time"

	"github.com/naumansqb/jobtrack/internal/db"
)

// effect describes what entering a status does to a request's derived
// fields. The table below is the whole rule set; it is deliberately data,
// not conditionals, so the rules are testable on their own.
type effect struct {
	setSentDate      bool // stamp sentDate if not already sent
	setResponseDate  bool // stamp responseDate
	responseIfUnset  bool // stamp responseDate only when unset
	success          *bool
	defaultImpact    *int // applied when the caller omits relationshipImpact
}

var statusEffects = map[string]effect{
	db.ReferralStatusSent: {
		setSentDate: true,
	},
	db.ReferralStatusAccepted: {
		setResponseDate: true,
		success:         boolPtr(true),
		defaultImpact:   intPtr(2),
	},
	db.ReferralStatusDeclined: {
		setResponseDate: true,
		success:         boolPtr(false),
		defaultImpact:   intPtr(-1),
	},
	db.ReferralStatusCompleted: {
		responseIfUnset: true,
		success:         boolPtr(true),
		defaultImpact:   intPtr(2),
	},
}

// applyTransition moves the request into newStatus, deriving dependent
// fields. Effects fire only when the status actually changes. It returns
// the default relationship impact for the target status, or nil when the
// status carries none.
func applyTransition(r *db.ReferralRequest, newStatus string, now time.Time) *int {
	if newStatus == r.Status {
		return nil
	}

	eff, ok := statusEffects[newStatus]
	r.Status = newStatus
	if !ok {
		return nil
	}

	if eff.setSentDate && r.SentDate == nil {
		t := now
		r.SentDate = &t
	}
	if eff.setResponseDate || (eff.responseIfUnset && r.ResponseDate == nil) {
		t := now
		r.ResponseDate = &t
	}
	if eff.success != nil {
		v := *eff.success
		r.Success = &v
	}
	return eff.defaultImpact
}

// clampStrength bounds a relationship strength to [0,100]
func clampStrength(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
