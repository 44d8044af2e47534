package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const referralColumns = `r.id, r.user_id, r.job_id, r.contact_id, r.status,
	        r.request_message, r.template_used, r.request_date, r.sent_date,
	        r.response_date, r.follow_up_date, r.next_follow_up_date, r.outcome,
	        r.success, r.relationship_impact, r.impact_applied,
	        r.gratitude_expressed, r.gratitude_notes, r.optimal_timing_score,
	        r.timing_reason, c.name, r.created_at, r.updated_at`

const referralFrom = ` FROM referral_requests r
	 JOIN professional_contacts c ON c.id = r.contact_id`

func scanReferral(row pgx.Row) (*ReferralRequest, error) {
	var r ReferralRequest
	err := row.Scan(&r.ID, &r.UserID, &r.JobID, &r.ContactID, &r.Status,
		&r.RequestMessage, &r.TemplateUsed, &r.RequestDate, &r.SentDate,
		&r.ResponseDate, &r.FollowUpDate, &r.NextFollowUpDate, &r.Outcome,
		&r.Success, &r.RelationshipImpact, &r.ImpactApplied,
		&r.GratitudeExpressed, &r.GratitudeNotes, &r.OptimalTimingScore,
		&r.TimingReason, &r.ContactName, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReferral inserts a new referral request. The contact ledger is never
// touched here; impact is applied only when an update first syncs it.
func (db *DB) CreateReferral(ctx context.Context, r *ReferralRequest) (*ReferralRequest, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO referral_requests (user_id, job_id, contact_id, status,
		     request_message, template_used, request_date, sent_date,
		     response_date, follow_up_date, next_follow_up_date, outcome,
		     success, relationship_impact, gratitude_expressed, gratitude_notes,
		     optimal_timing_score, timing_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id`,
		r.UserID, r.JobID, r.ContactID, r.Status,
		r.RequestMessage, r.TemplateUsed, r.RequestDate, r.SentDate,
		r.ResponseDate, r.FollowUpDate, r.NextFollowUpDate, r.Outcome,
		r.Success, r.RelationshipImpact, r.GratitudeExpressed, r.GratitudeNotes,
		r.OptimalTimingScore, r.TimingReason,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create referral request: %w", err)
	}
	return db.GetReferral(ctx, id)
}

// GetReferral retrieves a referral request by ID with the contact name joined
func (db *DB) GetReferral(ctx context.Context, id uuid.UUID) (*ReferralRequest, error) {
	r, err := scanReferral(db.pool.QueryRow(ctx,
		`SELECT `+referralColumns+referralFrom+` WHERE r.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get referral request: %w", err)
	}
	return r, nil
}

// UpdateReferral persists the full referral request row. When strength is
// non-nil the contact's relationship strength is written in the same
// transaction, so the ledger can never drift from the request that fed it.
func (db *DB) UpdateReferral(ctx context.Context, r *ReferralRequest, strength *StrengthUpdate) (*ReferralRequest, error) {
	tx, rollback, err := db.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	_, err = tx.Exec(ctx,
		`UPDATE referral_requests SET
		     status = $2,
		     request_message = $3,
		     template_used = $4,
		     request_date = $5,
		     sent_date = $6,
		     response_date = $7,
		     follow_up_date = $8,
		     next_follow_up_date = $9,
		     outcome = $10,
		     success = $11,
		     relationship_impact = $12,
		     impact_applied = $13,
		     gratitude_expressed = $14,
		     gratitude_notes = $15,
		     optimal_timing_score = $16,
		     timing_reason = $17,
		     updated_at = NOW()
		 WHERE id = $1`,
		r.ID, r.Status, r.RequestMessage, r.TemplateUsed, r.RequestDate,
		r.SentDate, r.ResponseDate, r.FollowUpDate, r.NextFollowUpDate,
		r.Outcome, r.Success, r.RelationshipImpact, r.ImpactApplied,
		r.GratitudeExpressed, r.GratitudeNotes, r.OptimalTimingScore,
		r.TimingReason,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update referral request: %w", err)
	}

	if strength != nil {
		if err := applyStrength(ctx, tx, strength); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit referral update: %w", err)
	}
	return db.GetReferral(ctx, r.ID)
}

// DeleteReferral removes a referral request. When strength is non-nil the
// contact's reversal write commits in the same transaction as the delete.
func (db *DB) DeleteReferral(ctx context.Context, id uuid.UUID, strength *StrengthUpdate) error {
	tx, rollback, err := db.begin(ctx)
	if err != nil {
		return err
	}
	defer rollback()

	tag, err := tx.Exec(ctx, `DELETE FROM referral_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete referral request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("referral request not found: %s", id)
	}

	if strength != nil {
		if err := applyStrength(ctx, tx, strength); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit referral delete: %w", err)
	}
	return nil
}

func applyStrength(ctx context.Context, tx pgx.Tx, s *StrengthUpdate) error {
	_, err := tx.Exec(ctx,
		`UPDATE professional_contacts SET relationship_strength = $2, updated_at = NOW()
		 WHERE id = $1`,
		s.ContactID, s.Strength,
	)
	if err != nil {
		return fmt.Errorf("failed to update relationship strength: %w", err)
	}
	return nil
}

// ListReferralsByJob retrieves all referral requests for one job
func (db *DB) ListReferralsByJob(ctx context.Context, jobID uuid.UUID) ([]ReferralRequest, error) {
	return db.listReferrals(ctx, `WHERE r.job_id = $1`, jobID)
}

// ListReferralsByUser retrieves all of a user's referral requests
func (db *DB) ListReferralsByUser(ctx context.Context, userID uuid.UUID) ([]ReferralRequest, error) {
	return db.listReferrals(ctx, `WHERE r.user_id = $1`, userID)
}

func (db *DB) listReferrals(ctx context.Context, where string, arg any) ([]ReferralRequest, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+referralColumns+referralFrom+` `+where+` ORDER BY r.created_at DESC`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list referral requests: %w", err)
	}
	defer rows.Close()

	var requests []ReferralRequest
	for rows.Next() {
		r, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, nil
}

// CountPendingByContact counts a contact's referral requests still in flight
// (pending or sent).
func (db *DB) CountPendingByContact(ctx context.Context, contactID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM referral_requests
		 WHERE contact_id = $1 AND status = ANY($2)`,
		contactID, []string{ReferralStatusPending, ReferralStatusSent},
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending referrals: %w", err)
	}
	return count, nil
}
