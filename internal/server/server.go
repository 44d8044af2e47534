// Package server provides the HTTP REST API for the job tracker.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/naumansqb/jobtrack/internal/config"
	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/ingest"
	"github.com/naumansqb/jobtrack/internal/lifecycle"
	"github.com/naumansqb/jobtrack/internal/referral"
	"github.com/naumansqb/jobtrack/internal/server/middleware"
	"github.com/naumansqb/jobtrack/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	db            *db.DB
	log           *zap.Logger
	lifecycle     *lifecycle.Manager
	referrals     *referral.Engine
	fetcher       *ingest.Fetcher
	userService   *UserService
	jwtService    *JWTService
	rateLimiter   *ratelimit.Limiter
	allowedOrigin string
}

// New creates a server wired to the given database
func New(cfg *config.Config, database *db.DB, log *zap.Logger) (*Server, error) {
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := &Server{
		db:            database,
		log:           log,
		lifecycle:     lifecycle.NewManager(database, log),
		referrals:     referral.NewEngine(database, log),
		fetcher:       ingest.NewFetcher(),
		userService:   NewUserService(database, passwordConfig),
		jwtService:    NewJWTService(jwtConfig),
		rateLimiter:   ratelimit.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		allowedOrigin: cfg.AllowedOrigin,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// routes builds the router: public auth and health endpoints, and the /api
// subtree behind JWT authentication.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	api := http.NewServeMux()

	// Job endpoints
	api.HandleFunc("GET /api/jobs", s.handleListJobs)
	api.HandleFunc("POST /api/jobs", s.handleCreateJob)
	api.HandleFunc("POST /api/jobs/ingest", s.handleIngestJob)
	api.HandleFunc("POST /api/jobs/bulk-archive", s.handleBulkArchiveJobs)
	api.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	api.HandleFunc("PATCH /api/jobs/{id}", s.handleUpdateJob)
	api.HandleFunc("POST /api/jobs/{id}/archive", s.handleArchiveJob)
	api.HandleFunc("POST /api/jobs/{id}/restore", s.handleRestoreJob)
	api.HandleFunc("DELETE /api/jobs/{id}", s.handleDeleteJob)

	// Contact endpoints
	api.HandleFunc("GET /api/contacts", s.handleListContacts)
	api.HandleFunc("POST /api/contacts", s.handleCreateContact)
	api.HandleFunc("GET /api/contacts/{id}", s.handleGetContact)
	api.HandleFunc("POST /api/contacts/{id}/jobs/{job_id}", s.handleLinkContactJob)
	api.HandleFunc("DELETE /api/contacts/{id}/jobs/{job_id}", s.handleUnlinkContactJob)

	// Referral request endpoints
	api.HandleFunc("POST /api/referral-requests", s.handleCreateReferral)
	api.HandleFunc("GET /api/referral-requests/analytics", s.handleReferralAnalytics)
	api.HandleFunc("GET /api/referral-requests/job/{job_id}", s.handleListReferralsByJob)
	api.HandleFunc("GET /api/referral-requests/job/{job_id}/potential-sources", s.handlePotentialSources)
	api.HandleFunc("GET /api/referral-requests/{id}", s.handleGetReferral)
	api.HandleFunc("PATCH /api/referral-requests/{id}", s.handleUpdateReferral)
	api.HandleFunc("DELETE /api/referral-requests/{id}", s.handleDeleteReferral)

	auth := middleware.Auth(s.jwtService.AsTokenValidator())
	mux.Handle("/api/", auth(api))
	return mux
}

// Start begins listening and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.db.Close()
	s.log.Info("server stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed the per-IP request rate
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"rate limit exceeded, please try again later"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds structured request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", clientIP(r)),
			zap.Duration("duration", time.Since(start)))
	})
}

// clientIP extracts the client IP from RemoteAddr. X-Forwarded-For is
// deliberately ignored; it is spoofable without a trusted proxy in front.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
