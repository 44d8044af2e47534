package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naumansqb/jobtrack/internal/config"
	"github.com/naumansqb/jobtrack/internal/server/ratelimit"
)

// newTestServer builds a server without a database. Only paths that fail
// before touching storage are exercised here; everything else is covered by
// the engine tests against fake stores.
func newTestServer() *Server {
	return &Server{
		log:           zap.NewNop(),
		jwtService:    NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1}),
		rateLimiter:   ratelimit.NewLimiter(100, 100),
		allowedOrigin: "*",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	w := httptest.NewRecorder()

	s.routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPIRequiresAuth(t *testing.T) {
	s := newTestServer()
	router := s.routes()

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs/abc", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/abc", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		token, err := s.jwtService.GenerateToken(uuid.New())
		require.NoError(t, err)

		// The invalid path id proves the request got past auth.
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/not-a-uuid", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", string(decodeError(t, w).Code))
	})
}

func TestWithRateLimit(t *testing.T) {
	s := newTestServer()
	s.rateLimiter.Stop()
	s.rateLimiter = ratelimit.NewLimiter(1, 2)
	defer s.rateLimiter.Stop()

	handler := s.withRateLimit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:51000"
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:51000"
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different client is unaffected.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:51000"
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithCORS(t *testing.T) {
	s := newTestServer()
	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("preflight short-circuits", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/jobs", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other methods pass through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestJWTRoundTrip(t *testing.T) {
	s := newTestServer()
	userID := uuid.New()

	token, err := s.jwtService.GenerateToken(userID)
	require.NoError(t, err)

	claims, err := s.jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())

	t.Run("wrong secret is rejected", func(t *testing.T) {
		other := NewJWTService(&config.JWTConfig{Secret: "other-secret", ExpirationHours: 1})
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		_, err := s.jwtService.ValidateToken("")
		assert.Error(t, err)
	})
}
