package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/naumansqb/jobtrack/internal/apperr"
	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/server/middleware"
	"github.com/naumansqb/jobtrack/internal/types"
)

// ListJobsResponse represents the response for listing jobs
type ListJobsResponse struct {
	Jobs   []db.JobOpportunity `json:"jobs"`
	Count  int                 `json:"count"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// authedUser pulls the authenticated user ID off the request context
func (s *Server) authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, apperr.Internal("no authenticated user on request", err))
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a path parameter as a UUID
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.validationError(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseQueryInt reads an integer query parameter with a default and an
// optional maximum (0 means unbounded).
func parseQueryInt(r *http.Request, name string, def, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// handleListJobs lists the caller's jobs with optional status filtering and
// pagination.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	opts := db.ListJobsOptions{
		Status: r.URL.Query().Get("status"),
		Limit:  parseQueryInt(r, "limit", 50, 100),
		Offset: parseQueryInt(r, "offset", 0, 0),
	}

	jobs, total, err := s.db.ListJobs(r.Context(), userID, opts)
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to list jobs", err))
		return
	}

	s.jsonResponse(w, http.StatusOK, ListJobsResponse{
		Jobs:   jobs,
		Count:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// handleCreateJob creates a job opportunity for the caller
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = db.JobStatusInterested
	}
	if status == db.JobStatusArchived {
		s.errorResponse(w, apperr.InvalidStatus("jobs cannot be created as archived"))
		return
	}

	job, err := s.db.CreateJob(r.Context(), &db.JobCreateInput{
		UserID:   userID,
		Title:    req.Title,
		Company:  req.Company,
		Status:   status,
		Deadline: req.Deadline,
	})
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to create job", err))
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleIngestJob creates a job from a posting URL
func (s *Server) handleIngestJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	var req types.IngestJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	posting, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.errorResponse(w, apperr.Validationf("failed to ingest posting: %v", err))
		return
	}

	company := posting.Company
	if company == "" {
		company = "Unknown"
	}
	job, err := s.db.CreateJob(r.Context(), &db.JobCreateInput{
		UserID:    userID,
		Title:     posting.Title,
		Company:   company,
		Status:    db.JobStatusInterested,
		SourceURL: &posting.URL,
	})
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to create job", err))
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// getOwnedJob loads a job and hides other users' jobs behind a 404
func (s *Server) getOwnedJob(w http.ResponseWriter, r *http.Request, userID, jobID uuid.UUID) (*db.JobOpportunity, bool) {
	job, err := s.db.GetJob(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to load job", err))
		return nil, false
	}
	if job == nil || !job.OwnedBy(userID) {
		s.errorResponse(w, apperr.NotFound("job"))
		return nil, false
	}
	return job, true
}

// handleGetJob retrieves one of the caller's jobs
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	job, ok := s.getOwnedJob(w, r, userID, jobID)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob applies generic field updates to a job. Lifecycle fields
// change only through the archive, restore, and delete endpoints.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	if _, ok := s.getOwnedJob(w, r, userID, jobID); !ok {
		return
	}

	job, err := s.db.UpdateJobFields(r.Context(), jobID, &db.JobUpdateInput{
		Title:    req.Title,
		Company:  req.Company,
		Deadline: req.Deadline,
	})
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to update job", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleArchiveJob archives a job
func (s *Server) handleArchiveJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.ArchiveJobRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.validationError(w, "invalid request body")
			return
		}
	}

	job, err := s.lifecycle.Archive(r.Context(), jobID, userID, req.Reason)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleBulkArchiveJobs archives a batch of the caller's jobs atomically
func (s *Server) handleBulkArchiveJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	var req types.BulkArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	count, err := s.lifecycle.BulkArchive(r.Context(), req.JobIDs, userID, req.Reason)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]int{"archivedCount": count})
}

// handleRestoreJob restores an archived job
func (s *Server) handleRestoreJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.RestoreJobRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.validationError(w, "invalid request body")
			return
		}
	}

	job, err := s.lifecycle.Restore(r.Context(), jobID, userID, req.RestoreToStatus)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJob permanently deletes a job and everything cascading from it
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.DeleteJobRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.validationError(w, "invalid request body")
			return
		}
	}

	if err := s.lifecycle.PermanentlyDelete(r.Context(), jobID, userID, req.ConfirmDelete); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
