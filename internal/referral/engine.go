package referral

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naumansqb/jobtrack/internal/apperr"
	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/types"
)

// Store is the persistence surface the engine needs. *db.DB satisfies it.
// UpdateReferral and DeleteReferral commit the optional strength write in
// the same transaction as the request write.
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*db.JobOpportunity, error)
	GetContact(ctx context.Context, id uuid.UUID) (*db.ProfessionalContact, error)
	ListContacts(ctx context.Context, userID uuid.UUID) ([]db.ProfessionalContact, error)
	GetReferral(ctx context.Context, id uuid.UUID) (*db.ReferralRequest, error)
	CreateReferral(ctx context.Context, r *db.ReferralRequest) (*db.ReferralRequest, error)
	UpdateReferral(ctx context.Context, r *db.ReferralRequest, strength *db.StrengthUpdate) (*db.ReferralRequest, error)
	DeleteReferral(ctx context.Context, id uuid.UUID, strength *db.StrengthUpdate) error
	ListReferralsByJob(ctx context.Context, jobID uuid.UUID) ([]db.ReferralRequest, error)
	ListReferralsByUser(ctx context.Context, userID uuid.UUID) ([]db.ReferralRequest, error)
	CountPendingByContact(ctx context.Context, contactID uuid.UUID) (int, error)
}

// Engine owns the referral-request state machine and keeps the contact
// relationship-strength ledger in step with it.
type Engine struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// NewEngine creates a referral workflow engine backed by the given store
func NewEngine(store Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log, now: time.Now}
}

// Create validates that the referenced job and contact both belong to the
// caller and inserts the request. No ledger effect happens on create; any
// relationshipImpact supplied here is stored but applied to the contact only
// once an update syncs it.
func (e *Engine) Create(ctx context.Context, userID uuid.UUID, in *types.CreateReferralRequest) (*db.ReferralRequest, error) {
	// Job and contact ownership are independent reads; check them
	// concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		job, err := e.store.GetJob(gctx, in.JobID)
		if err != nil {
			return apperr.Internal("failed to load job", err)
		}
		if job == nil || !job.OwnedBy(userID) {
			return apperr.NotFound("job")
		}
		return nil
	})
	g.Go(func() error {
		contact, err := e.store.GetContact(gctx, in.ContactID)
		if err != nil {
			return apperr.Internal("failed to load contact", err)
		}
		if contact == nil || contact.UserID != userID {
			return apperr.NotFound("contact")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := db.ReferralStatusDraft
	if in.Status != nil {
		status = *in.Status
	}
	if !db.ValidReferralStatus(status) {
		return nil, apperr.Validationf("invalid status %q", status)
	}

	requestDate := in.RequestDate
	if requestDate == nil {
		t := e.now().UTC()
		requestDate = &t
	}

	created, err := e.store.CreateReferral(ctx, &db.ReferralRequest{
		UserID:             userID,
		JobID:              in.JobID,
		ContactID:          in.ContactID,
		Status:             status,
		RequestMessage:     in.RequestMessage,
		TemplateUsed:       in.TemplateUsed,
		RequestDate:        requestDate,
		FollowUpDate:       in.FollowUpDate,
		NextFollowUpDate:   in.NextFollowUpDate,
		RelationshipImpact: in.RelationshipImpact,
		GratitudeExpressed: in.GratitudeExpressed,
		GratitudeNotes:     in.GratitudeNotes,
		OptimalTimingScore: in.OptimalTimingScore,
		TimingReason:       in.TimingReason,
	})
	if err != nil {
		return nil, apperr.Internal("failed to create referral request", err)
	}

	e.log.Info("referral request created",
		zap.String("request_id", created.ID.String()),
		zap.String("job_id", in.JobID.String()),
		zap.String("contact_id", in.ContactID.String()))
	return created, nil
}

// Get retrieves a referral request owned by the caller
func (e *Engine) Get(ctx context.Context, userID, requestID uuid.UUID) (*db.ReferralRequest, error) {
	return e.getOwned(ctx, userID, requestID)
}

func (e *Engine) getOwned(ctx context.Context, userID, requestID uuid.UUID) (*db.ReferralRequest, error) {
	req, err := e.store.GetReferral(ctx, requestID)
	if err != nil {
		return nil, apperr.Internal("failed to load referral request", err)
	}
	if req == nil || req.UserID != userID {
		return nil, apperr.NotFound("referral request")
	}
	return req, nil
}

// Update applies field changes and status-transition effects, then persists
// the request and any resulting relationship-strength delta in a single
// transaction. If the contact write cannot commit, the whole update fails
// with INTERNAL_ERROR rather than letting the ledger drift.
func (e *Engine) Update(ctx context.Context, userID, requestID uuid.UUID, in *types.UpdateReferralRequest) (*db.ReferralRequest, error) {
	req, err := e.getOwned(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	prevApplied := req.AppliedImpact()

	applyFieldUpdates(req, in)

	if in.Status != nil {
		if !db.ValidReferralStatus(*in.Status) {
			return nil, apperr.Validationf("invalid status %q", *in.Status)
		}
		defaultImpact := applyTransition(req, *in.Status, e.now().UTC())
		if in.RelationshipImpact == nil && defaultImpact != nil {
			v := *defaultImpact
			req.RelationshipImpact = &v
		}
	}

	newImpact := 0
	if req.RelationshipImpact != nil {
		newImpact = *req.RelationshipImpact
	}

	var strength *db.StrengthUpdate
	delta := newImpact - prevApplied
	if delta != 0 {
		contact, err := e.store.GetContact(ctx, req.ContactID)
		if err != nil {
			return nil, apperr.Internal("failed to load contact for ledger sync", err)
		}
		if contact == nil {
			return nil, apperr.Internal("contact missing for ledger sync", nil)
		}
		strength = &db.StrengthUpdate{
			ContactID: contact.ID,
			Strength:  clampStrength(contact.StrengthOrDefault() + delta),
		}
		req.ImpactApplied = req.RelationshipImpact != nil
	}

	updated, err := e.store.UpdateReferral(ctx, req, strength)
	if err != nil {
		return nil, apperr.Internal("failed to update referral request", err)
	}

	if strength != nil {
		e.log.Info("relationship strength synced",
			zap.String("contact_id", strength.ContactID.String()),
			zap.Int("delta", delta),
			zap.Int("strength", strength.Strength))
	}
	return updated, nil
}

// applyFieldUpdates copies the caller's explicit field changes onto the
// stored request. Status is handled separately by the transition table.
func applyFieldUpdates(r *db.ReferralRequest, in *types.UpdateReferralRequest) {
	if in.RequestMessage != nil {
		r.RequestMessage = in.RequestMessage
	}
	if in.TemplateUsed != nil {
		r.TemplateUsed = in.TemplateUsed
	}
	if in.RequestDate != nil {
		r.RequestDate = in.RequestDate
	}
	if in.SentDate != nil {
		r.SentDate = in.SentDate
	}
	if in.ResponseDate != nil {
		r.ResponseDate = in.ResponseDate
	}
	if in.FollowUpDate != nil {
		r.FollowUpDate = in.FollowUpDate
	}
	if in.NextFollowUpDate != nil {
		r.NextFollowUpDate = in.NextFollowUpDate
	}
	if in.Outcome != nil {
		r.Outcome = in.Outcome
	}
	if in.Success != nil {
		r.Success = in.Success
	}
	if in.RelationshipImpact != nil {
		r.RelationshipImpact = in.RelationshipImpact
	}
	if in.GratitudeExpressed != nil {
		r.GratitudeExpressed = *in.GratitudeExpressed
	}
	if in.GratitudeNotes != nil {
		r.GratitudeNotes = in.GratitudeNotes
	}
	if in.OptimalTimingScore != nil {
		r.OptimalTimingScore = in.OptimalTimingScore
	}
	if in.TimingReason != nil {
		r.TimingReason = in.TimingReason
	}
}

// Delete removes a referral request, first reversing its relationship
// impact on the contact when one is currently applied. The reversal and the
// delete commit together.
func (e *Engine) Delete(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := e.getOwned(ctx, userID, requestID)
	if err != nil {
		return err
	}

	var strength *db.StrengthUpdate
	if applied := req.AppliedImpact(); applied != 0 {
		contact, err := e.store.GetContact(ctx, req.ContactID)
		if err != nil {
			return apperr.Internal("failed to load contact for impact reversal", err)
		}
		if contact != nil {
			strength = &db.StrengthUpdate{
				ContactID: contact.ID,
				Strength:  clampStrength(contact.StrengthOrDefault() - applied),
			}
		}
	}

	if err := e.store.DeleteReferral(ctx, requestID, strength); err != nil {
		return apperr.Internal("failed to delete referral request", err)
	}

	if strength != nil {
		e.log.Info("relationship impact reversed",
			zap.String("request_id", requestID.String()),
			zap.String("contact_id", strength.ContactID.String()))
	}
	return nil
}

// ListByJob returns all referral requests for one of the caller's jobs
func (e *Engine) ListByJob(ctx context.Context, userID, jobID uuid.UUID) ([]db.ReferralRequest, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("failed to load job", err)
	}
	if job == nil || !job.OwnedBy(userID) {
		return nil, apperr.NotFound("job")
	}
	requests, err := e.store.ListReferralsByJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("failed to list referral requests", err)
	}
	return requests, nil
}

// Summary computes referral analytics over all of the caller's requests
func (e *Engine) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	requests, err := e.store.ListReferralsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list referral requests", err)
	}
	return Summarize(requests), nil
}

// RankedSource pairs a candidate contact with its timing score
type RankedSource struct {
	Contact db.ProfessionalContact `json:"contact"`
	Score   int                    `json:"score"`
	Reason  string                 `json:"reason"`
}

// maxRankedSources caps how many candidates PotentialSources returns
const maxRankedSources = 50

// PotentialSources ranks the caller's contacts that are linked to the given
// job by optimal-timing score, best first. Ties keep input order.
func (e *Engine) PotentialSources(ctx context.Context, userID, jobID uuid.UUID) (*db.JobOpportunity, []RankedSource, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to load job", err)
	}
	if job == nil || !job.OwnedBy(userID) {
		return nil, nil, apperr.NotFound("job")
	}

	contacts, err := e.store.ListContacts(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to list contacts", err)
	}

	now := e.now().UTC()
	var sources []RankedSource
	for _, contact := range contacts {
		if !contact.LinkedTo(jobID) {
			continue
		}
		pending, err := e.store.CountPendingByContact(ctx, contact.ID)
		if err != nil {
			return nil, nil, apperr.Internal("failed to count pending referrals", err)
		}
		score, reason := Score(&contact, pending, now)
		sources = append(sources, RankedSource{Contact: contact, Score: score, Reason: reason})
	}

	sources = rankSources(sources, maxRankedSources)
	return job, sources, nil
}
