package referral

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naumansqb/jobtrack/internal/apperr"
	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/types"
)

// fakeReferralStore keeps everything in maps and mirrors the store's
// transactional contract: a request write and its strength update either
// both land or neither does.
type fakeReferralStore struct {
	jobs       map[uuid.UUID]*db.JobOpportunity
	contacts   map[uuid.UUID]*db.ProfessionalContact
	referrals  map[uuid.UUID]*db.ReferralRequest
	pending    map[uuid.UUID]int
	failWrites bool
}

func newFakeReferralStore() *fakeReferralStore {
	return &fakeReferralStore{
		jobs:      make(map[uuid.UUID]*db.JobOpportunity),
		contacts:  make(map[uuid.UUID]*db.ProfessionalContact),
		referrals: make(map[uuid.UUID]*db.ReferralRequest),
		pending:   make(map[uuid.UUID]int),
	}
}

func (f *fakeReferralStore) GetJob(_ context.Context, id uuid.UUID) (*db.JobOpportunity, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (f *fakeReferralStore) GetContact(_ context.Context, id uuid.UUID) (*db.ProfessionalContact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeReferralStore) ListContacts(_ context.Context, userID uuid.UUID) ([]db.ProfessionalContact, error) {
	var out []db.ProfessionalContact
	for _, c := range f.contacts {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeReferralStore) GetReferral(_ context.Context, id uuid.UUID) (*db.ReferralRequest, error) {
	r, ok := f.referrals[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReferralStore) CreateReferral(_ context.Context, r *db.ReferralRequest) (*db.ReferralRequest, error) {
	if f.failWrites {
		return nil, errors.New("insert failed")
	}
	cp := *r
	cp.ID = uuid.New()
	if c, ok := f.contacts[cp.ContactID]; ok {
		cp.ContactName = c.Name
	}
	f.referrals[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeReferralStore) UpdateReferral(_ context.Context, r *db.ReferralRequest, strength *db.StrengthUpdate) (*db.ReferralRequest, error) {
	if f.failWrites {
		return nil, errors.New("tx aborted")
	}
	cp := *r
	f.referrals[cp.ID] = &cp
	if strength != nil {
		f.applyStrength(strength)
	}
	out := cp
	return &out, nil
}

func (f *fakeReferralStore) DeleteReferral(_ context.Context, id uuid.UUID, strength *db.StrengthUpdate) error {
	if f.failWrites {
		return errors.New("tx aborted")
	}
	delete(f.referrals, id)
	if strength != nil {
		f.applyStrength(strength)
	}
	return nil
}

func (f *fakeReferralStore) applyStrength(s *db.StrengthUpdate) {
	if c, ok := f.contacts[s.ContactID]; ok {
		v := s.Strength
		c.RelationshipStrength = &v
	}
}

func (f *fakeReferralStore) ListReferralsByJob(_ context.Context, jobID uuid.UUID) ([]db.ReferralRequest, error) {
	var out []db.ReferralRequest
	for _, r := range f.referrals {
		if r.JobID == jobID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReferralStore) ListReferralsByUser(_ context.Context, userID uuid.UUID) ([]db.ReferralRequest, error) {
	var out []db.ReferralRequest
	for _, r := range f.referrals {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReferralStore) CountPendingByContact(_ context.Context, contactID uuid.UUID) (int, error) {
	return f.pending[contactID], nil
}

var engineNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(store *fakeReferralStore) *Engine {
	e := NewEngine(store, zap.NewNop())
	e.now = func() time.Time { return engineNow }
	return e
}

// seedReferral sets up a user with one job, one contact at the given
// strength, and returns their IDs.
func seedReferral(store *fakeReferralStore, strength *int) (userID, jobID, contactID uuid.UUID) {
	userID = uuid.New()
	jobID = uuid.New()
	contactID = uuid.New()
	store.jobs[jobID] = &db.JobOpportunity{ID: jobID, UserID: userID, Title: "Backend Engineer", Company: "Initech"}
	store.contacts[contactID] = &db.ProfessionalContact{ID: contactID, UserID: userID, Name: "Dana", RelationshipStrength: strength}
	return userID, jobID, contactID
}

func strengthOf(t *testing.T, store *fakeReferralStore, contactID uuid.UUID) int {
	t.Helper()
	c := store.contacts[contactID]
	require.NotNil(t, c)
	return c.StrengthOrDefault()
}

func TestEngineCreate(t *testing.T) {
	t.Run("defaults status and requestDate, touches no ledger", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)

		impact := 5
		created, err := e.Create(context.Background(), userID, &types.CreateReferralRequest{
			JobID:              jobID,
			ContactID:          contactID,
			RelationshipImpact: &impact,
		})
		require.NoError(t, err)

		assert.Equal(t, db.ReferralStatusDraft, created.Status)
		require.NotNil(t, created.RequestDate)
		assert.Equal(t, engineNow, *created.RequestDate)
		assert.False(t, created.ImpactApplied)
		// The stored impact waits for an update to sync it.
		assert.Equal(t, 60, strengthOf(t, store, contactID))
	})

	t.Run("job owned by someone else is not found", func(t *testing.T) {
		store := newFakeReferralStore()
		_, jobID, contactID := seedReferral(store, nil)
		e := newTestEngine(store)

		_, err := e.Create(context.Background(), uuid.New(), &types.CreateReferralRequest{
			JobID:     jobID,
			ContactID: contactID,
		})
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
		assert.Empty(t, store.referrals)
	})

	t.Run("missing contact is not found", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, _ := seedReferral(store, nil)
		e := newTestEngine(store)

		_, err := e.Create(context.Background(), userID, &types.CreateReferralRequest{
			JobID:     jobID,
			ContactID: uuid.New(),
		})
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, nil)
		e := newTestEngine(store)

		bogus := "ghosted"
		_, err := e.Create(context.Background(), userID, &types.CreateReferralRequest{
			JobID:     jobID,
			ContactID: contactID,
			Status:    &bogus,
		})
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})
}

func TestEngineUpdateLedgerSync(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, e *Engine, userID, jobID, contactID uuid.UUID, status string) *db.ReferralRequest {
		t.Helper()
		created, err := e.Create(ctx, userID, &types.CreateReferralRequest{
			JobID: jobID, ContactID: contactID, Status: &status,
		})
		require.NoError(t, err)
		return created
	}

	t.Run("accepted without explicit impact applies the +2 default", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusAccepted
		updated, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &status})
		require.NoError(t, err)

		require.NotNil(t, updated.RelationshipImpact)
		assert.Equal(t, 2, *updated.RelationshipImpact)
		assert.True(t, updated.ImpactApplied)
		assert.Equal(t, 62, strengthOf(t, store, contactID))
	})

	t.Run("declined without explicit impact applies the -1 default", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusDeclined
		updated, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &status})
		require.NoError(t, err)

		require.NotNil(t, updated.RelationshipImpact)
		assert.Equal(t, -1, *updated.RelationshipImpact)
		assert.Equal(t, 59, strengthOf(t, store, contactID))
	})

	t.Run("explicit impact wins over the status default", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusAccepted
		impact := 7
		updated, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{
			Status:             &status,
			RelationshipImpact: &impact,
		})
		require.NoError(t, err)

		assert.Equal(t, 7, *updated.RelationshipImpact)
		assert.Equal(t, 67, strengthOf(t, store, contactID))
	})

	t.Run("re-sync applies only the delta", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusAccepted
		_, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &status})
		require.NoError(t, err)
		require.Equal(t, 62, strengthOf(t, store, contactID))

		// Revising +2 to +5 must add 3, not 5.
		impact := 5
		_, err = e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{RelationshipImpact: &impact})
		require.NoError(t, err)
		assert.Equal(t, 65, strengthOf(t, store, contactID))
	})

	t.Run("unchanged impact writes no strength update", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		msg := "following up"
		_, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{RequestMessage: &msg})
		require.NoError(t, err)
		assert.Equal(t, 60, strengthOf(t, store, contactID))
	})

	t.Run("strength clamps at 100", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(99))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusAccepted
		_, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, 100, strengthOf(t, store, contactID))
	})

	t.Run("strength clamps at 0", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(0))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusDeclined
		_, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, 0, strengthOf(t, store, contactID))
	})

	t.Run("contact with no strength starts from the default 50", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, nil)
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusAccepted
		_, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, 52, strengthOf(t, store, contactID))
	})

	t.Run("failed commit leaves both request and ledger untouched", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		store.failWrites = true
		status := db.ReferralStatusAccepted
		_, err := e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &status})
		assert.True(t, apperr.IsCode(err, apperr.CodeInternal))

		stored := store.referrals[req.ID]
		require.NotNil(t, stored)
		assert.Equal(t, db.ReferralStatusSent, stored.Status)
		assert.False(t, stored.ImpactApplied)
		assert.Equal(t, 60, strengthOf(t, store, contactID))
	})

	t.Run("someone else's request is not found", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, nil)
		e := newTestEngine(store)
		req := create(t, e, userID, jobID, contactID, db.ReferralStatusSent)

		status := db.ReferralStatusAccepted
		_, err := e.Update(ctx, uuid.New(), req.ID, &types.UpdateReferralRequest{Status: &status})
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	})
}

func TestEngineDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("reverses an applied impact exactly", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)

		status := db.ReferralStatusSent
		req, err := e.Create(ctx, userID, &types.CreateReferralRequest{JobID: jobID, ContactID: contactID, Status: &status})
		require.NoError(t, err)

		accepted := db.ReferralStatusAccepted
		_, err = e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &accepted})
		require.NoError(t, err)
		require.Equal(t, 62, strengthOf(t, store, contactID))

		require.NoError(t, e.Delete(ctx, userID, req.ID))
		assert.Equal(t, 60, strengthOf(t, store, contactID))
		assert.NotContains(t, store.referrals, req.ID)
	})

	t.Run("stored but never-applied impact is not reversed", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)

		impact := 5
		req, err := e.Create(ctx, userID, &types.CreateReferralRequest{
			JobID: jobID, ContactID: contactID, RelationshipImpact: &impact,
		})
		require.NoError(t, err)

		require.NoError(t, e.Delete(ctx, userID, req.ID))
		assert.Equal(t, 60, strengthOf(t, store, contactID))
	})

	t.Run("failed commit leaves request and ledger in place", func(t *testing.T) {
		store := newFakeReferralStore()
		userID, jobID, contactID := seedReferral(store, intPtr(60))
		e := newTestEngine(store)

		status := db.ReferralStatusSent
		req, err := e.Create(ctx, userID, &types.CreateReferralRequest{JobID: jobID, ContactID: contactID, Status: &status})
		require.NoError(t, err)
		accepted := db.ReferralStatusAccepted
		_, err = e.Update(ctx, userID, req.ID, &types.UpdateReferralRequest{Status: &accepted})
		require.NoError(t, err)

		store.failWrites = true
		err = e.Delete(ctx, userID, req.ID)
		assert.True(t, apperr.IsCode(err, apperr.CodeInternal))
		assert.Contains(t, store.referrals, req.ID)
		assert.Equal(t, 62, strengthOf(t, store, contactID))
	})
}

func TestEnginePotentialSources(t *testing.T) {
	ctx := context.Background()
	store := newFakeReferralStore()
	userID, jobID, _ := seedReferral(store, nil)
	e := newTestEngine(store)

	linked := func(name string, strength int, lastContact *time.Time, pending int) uuid.UUID {
		id := uuid.New()
		store.contacts[id] = &db.ProfessionalContact{
			ID:                   id,
			UserID:               userID,
			Name:                 name,
			RelationshipStrength: &strength,
			LastContactDate:      lastContact,
			LinkedJobIDs:         []uuid.UUID{jobID},
		}
		store.pending[id] = pending
		return id
	}

	recent := engineNow.Add(-10 * 24 * time.Hour)
	stale := engineNow.Add(-200 * 24 * time.Hour)
	strongID := linked("Strong", 80, &recent, 0)
	busyID := linked("Busy", 80, &recent, 1)
	coldID := linked("Cold", 30, &stale, 0)

	// Not linked to the job; must not appear.
	unlinked := uuid.New()
	store.contacts[unlinked] = &db.ProfessionalContact{ID: unlinked, UserID: userID, Name: "Elsewhere"}

	job, sources, err := e.PotentialSources(ctx, userID, jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, job.ID)
	require.Len(t, sources, 3)

	// Recent + strong + free: 50+20+20 = 90.
	assert.Equal(t, strongID, sources[0].Contact.ID)
	assert.Equal(t, 90, sources[0].Score)
	assert.Equal(t, "Recent contact - good timing - Strong relationship", sources[0].Reason)

	// Same but one pending request: 80.
	assert.Equal(t, busyID, sources[1].Contact.ID)
	assert.Equal(t, 80, sources[1].Score)

	// Stale + weak: 50-10-15 = 25.
	assert.Equal(t, coldID, sources[2].Contact.ID)
	assert.Equal(t, 25, sources[2].Score)

	t.Run("foreign job is not found", func(t *testing.T) {
		_, _, err := e.PotentialSources(ctx, uuid.New(), jobID)
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	})
}
