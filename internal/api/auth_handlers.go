package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/metrics"
	"stealthcompany.com/icudash/internal/session"
)

// LoginRequest is the login form
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and user
type LoginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// HealthHandler reports liveness
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoginHandler starts a session for any non-empty credentials
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.RecordLogin("invalid_json")
		respondError(w, r, err)
		return
	}

	token, user, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrValidation) {
			log.Warn().Str("username", req.Username).Msg("Login rejected: missing credentials")
			metrics.RecordLogin("validation_failed")
		}
		respondError(w, r, err)
		return
	}

	metrics.RecordLogin("success")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// SessionHandler returns the logged-in user, if any
func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := s.sessions.Current()
	if !ok {
		respondError(w, r, session.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, map[string]session.User{"user": user})
}

// LogoutHandler ends the session and resets the notification list
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	s.notifications.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// RefreshHandler issues a fresh token for the current session
func (s *Server) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	token, err := s.sessions.Refresh()
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, _ := s.sessions.Current()
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}
