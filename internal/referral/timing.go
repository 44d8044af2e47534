package referral

import (
	"sort"
	"time"

	"github.com/naumansqb/jobtrack/internal/db"
)

// Score rates how favorable this moment is to ask the contact for a
// referral, on a 0-100 scale with a human-readable justification. The
// heuristic starts at 50 and adjusts for recency of contact, relationship
// strength, and whether the contact already has a request in flight.
func Score(contact *db.ProfessionalContact, pendingCount int, now time.Time) (int, string) {
	score := 50

	// A contact never logged counts as a year since last touch.
	days := 365
	if contact.LastContactDate != nil {
		days = int(now.Sub(*contact.LastContactDate).Hours() / 24)
	}

	var reason string
	switch {
	case days < 30:
		score += 20
		reason = "Recent contact - good timing"
	case days < 90:
		score += 10
		reason = "Moderate time since last contact"
	default:
		score -= 10
		reason = "Long time since last contact - consider reconnecting first"
	}

	strength := contact.StrengthOrDefault()
	switch {
	case strength >= 70:
		score += 20
		reason += " - Strong relationship"
	case strength < 50:
		score -= 15
		reason += " - Weak relationship - build rapport first"
	}

	if pendingCount > 0 {
		score -= 10
		reason += " - Already has pending referral request"
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, reason
}

// rankSources orders sources by score descending, keeping input order on
// ties, and truncates to limit.
func rankSources(sources []RankedSource, limit int) []RankedSource {
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})
	if len(sources) > limit {
		sources = sources[:limit]
	}
	return sources
}
