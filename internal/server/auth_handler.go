// Package server provides the HTTP REST API for the job tracker.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/types"
)

// LoginResponse is returned by both register and login
type LoginResponse struct {
	User  *db.User `json:"user"`
	Token string   `json:"token"`
}

// handleRegister handles user registration requests
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	user, err := s.userService.Register(r.Context(), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, LoginResponse{User: user, Token: token})
}

// handleLogin handles user login requests
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.validationError(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.validationError(w, err.Error())
		return
	}

	user, err := s.userService.Login(r.Context(), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, LoginResponse{User: user, Token: token})
}
