package referral

import (
	"math"

	"github.com/naumansqb/jobtrack/internal/db"
)

// ContactStats summarizes referral outcomes for one contact
type ContactStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
}

// Summary holds aggregate referral-request statistics for one user
type Summary struct {
	Total                 int                     `json:"total"`
	ByStatus              map[string]int          `json:"by_status"`
	Successful            int                     `json:"successful"`
	Responded             int                     `json:"responded"`
	SuccessRate           float64                 `json:"success_rate"`
	ByContact             map[string]ContactStats `json:"by_contact"`
	AvgRelationshipImpact float64                 `json:"avg_relationship_impact"`
}

// Summarize computes summary statistics over a user's referral requests.
// Per-contact counts and the average impact cover only responded requests
// (accepted, declined, or completed).
func Summarize(requests []db.ReferralRequest) *Summary {
	s := &Summary{
		ByStatus:  make(map[string]int),
		ByContact: make(map[string]ContactStats),
	}
	s.Total = len(requests)

	impactSum := 0
	impactCount := 0

	for i := range requests {
		r := &requests[i]
		s.ByStatus[r.Status]++

		if r.IsSuccessful() {
			s.Successful++
		}
		if !r.IsResponded() {
			continue
		}
		s.Responded++

		stats := s.ByContact[r.ContactName]
		stats.Total++
		if r.IsSuccessful() {
			stats.Successful++
		}
		s.ByContact[r.ContactName] = stats

		if r.RelationshipImpact != nil {
			impactSum += *r.RelationshipImpact
			impactCount++
		}
	}

	if s.Responded > 0 {
		rate := float64(s.Successful) / float64(s.Responded) * 100
		s.SuccessRate = math.Round(rate*100) / 100
	}
	if impactCount > 0 {
		s.AvgRelationshipImpact = float64(impactSum) / float64(impactCount)
	}
	return s
}
