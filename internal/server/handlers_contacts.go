package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/naumansqb/jobtrack/internal/apperr"
	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/types"
)

// handleListContacts lists the caller's contacts with their linked jobs
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	contacts, err := s.db.ListContacts(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to list contacts", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// handleCreateContact creates a professional contact for the caller
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}

	var req types.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	contact, err := s.db.CreateContact(r.Context(), &db.ContactCreateInput{
		UserID:               userID,
		Name:                 req.Name,
		Email:                req.Email,
		Company:              req.Company,
		RelationshipStrength: req.RelationshipStrength,
		LastContactDate:      req.LastContactDate,
	})
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to create contact", err))
		return
	}
	s.jsonResponse(w, http.StatusCreated, contact)
}

// getOwnedContact loads a contact and hides other users' contacts behind a
// 404.
func (s *Server) getOwnedContact(w http.ResponseWriter, r *http.Request, userID, contactID uuid.UUID) (*db.ProfessionalContact, bool) {
	contact, err := s.db.GetContact(r.Context(), contactID)
	if err != nil {
		s.errorResponse(w, apperr.Internal("failed to load contact", err))
		return nil, false
	}
	if contact == nil || contact.UserID != userID {
		s.errorResponse(w, apperr.NotFound("contact"))
		return nil, false
	}
	return contact, true
}

// handleGetContact retrieves one of the caller's contacts
func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	contactID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	contact, ok := s.getOwnedContact(w, r, userID, contactID)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, contact)
}

// handleLinkContactJob links a contact to a job. Both must belong to the
// caller. Linking twice is a no-op.
func (s *Server) handleLinkContactJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	contactID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "job_id")
	if !ok {
		return
	}

	if _, ok := s.getOwnedContact(w, r, userID, contactID); !ok {
		return
	}
	if _, ok := s.getOwnedJob(w, r, userID, jobID); !ok {
		return
	}

	if err := s.db.LinkContactJob(r.Context(), contactID, jobID); err != nil {
		s.errorResponse(w, apperr.Internal("failed to link contact to job", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUnlinkContactJob removes a contact-job link
func (s *Server) handleUnlinkContactJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	contactID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	jobID, ok := s.pathUUID(w, r, "job_id")
	if !ok {
		return
	}

	if _, ok := s.getOwnedContact(w, r, userID, contactID); !ok {
		return
	}

	if err := s.db.UnlinkContactJob(r.Context(), contactID, jobID); err != nil {
		s.errorResponse(w, apperr.Internal("failed to unlink contact from job", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
