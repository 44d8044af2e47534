package server

import (
	"encoding/json"
	"net/http"

	"github.com/naumansqb/jobtrack/internal/types"
)

// handleCreateReferral creates a referral request for one of the caller's
// (job, contact) pairs.
func (s *Server) handleCreateReferral(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	var req types.CreateReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	created, err := s.referrals.Create(r.Context(), userID, &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

// handleGetReferral retrieves one of the caller's referral requests
func (s *Server) handleGetReferral(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	requestID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	req, err := s.referrals.Get(r.Context(), userID, requestID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, req)
}

// handleUpdateReferral applies a partial update, running status-transition
// effects and the relationship-strength sync.
func (s *Server) handleUpdateReferral(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	requestID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.UpdateReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	updated, err := s.referrals.Update(r.Context(), userID, requestID, &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteReferral deletes a referral request, reversing any applied
// relationship impact.
func (s *Server) handleDeleteReferral(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	requestID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.referrals.Delete(r.Context(), userID, requestID); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListReferralsByJob lists referral requests for one of the caller's
// jobs.
func (s *Server) handleListReferralsByJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "job_id")
	if !ok {
		return
	}

	requests, err := s.referrals.ListByJob(r.Context(), userID, jobID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"requests": requests,
		"count":    len(requests),
	})
}

// handlePotentialSources ranks the contacts linked to a job by how
// favorable the timing is to ask them for a referral.
func (s *Server) handlePotentialSources(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "job_id")
	if !ok {
		return
	}

	job, sources, err := s.referrals.PotentialSources(r.Context(), userID, jobID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job":     job,
		"sources": sources,
		"count":   len(sources),
	})
}

// handleReferralAnalytics returns summary statistics over all of the
// caller's referral requests.
func (s *Server) handleReferralAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	summary, err := s.referrals.Summary(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}
