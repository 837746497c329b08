package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/icudash/internal/session"
	"stealthcompany.com/icudash/internal/storage"
)

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	authHandler := env.server.AuthMiddleware(handler)

	tests := []struct {
		name           string
		path           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "Health endpoint should skip auth",
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Metrics endpoint should skip auth",
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Session endpoint should skip auth",
			path:           "/api/session",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "API endpoint without auth should fail",
			path:           "/api/patients",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "API endpoint with invalid auth should fail",
			path:           "/api/patients",
			authHeader:     "Invalid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "API endpoint with Bearer but no token should fail",
			path:           "/api/patients",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "API endpoint with garbage token should fail",
			path:           "/api/patients",
			authHeader:     "Bearer not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "API endpoint with session token should pass",
			path:           "/api/patients",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Token query parameter should pass",
			path:           "/api/monitoring/P101/stream?token=" + token,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rr := httptest.NewRecorder()
			authHandler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestAuthMiddleware_ForeignSessionToken(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	// signed with the same secret but for a session that is not current
	other := session.NewTokenIssuer("test-secret", time.Hour)
	forged, err := other.Issue("some-other-session", session.NewUser("x@y.z", env.server.now()), env.server.now())
	require.NoError(t, err)

	rr := env.do(t, "GET", "/api/patients", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var body map[string]string
	decodeBody(t, rr, &body)
	assert.Equal(t, ErrNoActiveSession, body["error"])
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid credentials",
			body:           LoginRequest{Username: "a@b.c", Password: "x"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing password",
			body:           LoginRequest{Username: "a@b.c"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Please fill in all fields",
		},
		{
			name:           "invalid json",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  ErrInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(t, "POST", LoginPath, "", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedError != "" {
				var body map[string]string
				decodeBody(t, rr, &body)
				assert.Equal(t, tt.expectedError, body["message"])
				assert.False(t, storedKey(t, env.store, storage.KeyUser))
				return
			}

			var resp LoginResponse
			decodeBody(t, rr, &resp)
			assert.Equal(t, "a", resp.User.Name)
			assert.Equal(t, session.DefaultRole, resp.User.Role)
			assert.True(t, storedKey(t, env.store, storage.KeyUser))
		})
	}
}

func TestSessionAndLogout(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", SessionPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := env.login(t)

	rr = env.do(t, "GET", SessionPath, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sess map[string]session.User
	decodeBody(t, rr, &sess)
	assert.Equal(t, "dr.house", sess["user"].Name)

	rr = env.do(t, "POST", "/api/patients/P102/select", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, "DELETE", "/api/notifications/1", token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, "POST", "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.False(t, storedKey(t, env.store, storage.KeyUser))
	assert.False(t, storedKey(t, env.store, storage.KeySelectedPatient))
	assert.Len(t, env.server.notifications.List("all", ""), 3)

	// the old token no longer opens the gate
	rr = env.do(t, "GET", "/api/patients", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "POST", "/api/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp LoginResponse
	decodeBody(t, rr, &resp)
	require.NotEmpty(t, resp.Token)

	rr = env.do(t, "GET", "/api/dashboard", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
