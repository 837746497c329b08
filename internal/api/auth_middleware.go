package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/session"
)

// publicPaths skip the session gate
var publicPaths = map[string]bool{
	HealthPath:  true,
	MetricsPath: true,
	LoginPath:   true,
	SessionPath: true,
}

// AuthMiddleware requires a bearer token that belongs to the current session
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, label := bearerToken(r)
		if tokenString == "" {
			log.Warn().Str("path", r.URL.Path).Msg(label)
			writeError(w, http.StatusUnauthorized, label, label)
			return
		}

		user, err := s.sessions.Authenticate(tokenString)
		if err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg(LogTokenValidationFailed)
			if errors.Is(err, session.ErrNoSession) {
				writeError(w, http.StatusUnauthorized, ErrNoActiveSession, err.Error())
				return
			}
			writeError(w, http.StatusUnauthorized, ErrInvalidToken, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		ctx = context.WithValue(ctx, TokenKey, tokenString)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter for websocket clients. On failure it returns the
// error label to report.
func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get(AuthorizationHeader)
	if authHeader == "" {
		if t := r.URL.Query().Get(TokenQueryParam); t != "" {
			return t, ""
		}
		return "", ErrAuthHeaderRequired
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	t := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	if t == "" {
		return "", ErrInvalidAuthHeader
	}
	return t, ""
}

// GetUserFromContext returns the authenticated user of the request
func GetUserFromContext(ctx context.Context) (session.User, error) {
	user, ok := ctx.Value(UserKey).(session.User)
	if !ok {
		return session.User{}, errors.New(ErrUserNotFound)
	}
	return user, nil
}
