// Package server provides the HTTP REST API for the job tracker.
package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/naumansqb/jobtrack/internal/apperr"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// errorBody is the JSON error envelope every failed request returns
type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Details string      `json:"details,omitempty"`
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse maps an error to its HTTP status and writes the error
// envelope. Internal causes are logged, never exposed.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	if _, ok := err.(*ErrInvalidCredentials); ok {
		s.jsonResponse(w, http.StatusUnauthorized, errorBody{
			Code:    "UNAUTHORIZED",
			Message: err.Error(),
		})
		return
	}

	ae := apperr.From(err)
	if ae.Code == apperr.CodeInternal {
		s.log.Error("request failed", zap.Error(err))
	}
	s.jsonResponse(w, apperr.HTTPStatus(ae), errorBody{
		Code:    ae.Code,
		Message: ae.Message,
		Details: ae.Details,
	})
}

// validationError writes a 400 with the given message
func (s *Server) validationError(w http.ResponseWriter, message string) {
	s.errorResponse(w, apperr.Validation(message))
}
