package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/analytics"
	"stealthcompany.com/icudash/internal/catalog"
	"stealthcompany.com/icudash/internal/notifications"
	"stealthcompany.com/icudash/internal/patients"
	"stealthcompany.com/icudash/internal/reports"
	"stealthcompany.com/icudash/internal/session"
	"stealthcompany.com/icudash/internal/storage"
	"stealthcompany.com/icudash/internal/uploads"
	"stealthcompany.com/icudash/internal/vitals"
)

var (
	errNoSelection = errors.New("no patient selected")
	errInvalidJSON = errors.New(ErrInvalidJSON)
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, label, message string) {
	writeJSON(w, status, map[string]string{
		"error":   label,
		"message": message,
	})
}

// statusFor maps a domain error to its HTTP status and error label
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidJSON),
		errors.Is(err, session.ErrValidation),
		errors.Is(err, patients.ErrValidation),
		errors.Is(err, patients.ErrMissingPatientID),
		errors.Is(err, notifications.ErrInvalidFilter),
		errors.Is(err, analytics.ErrInvalidRange),
		errors.Is(err, uploads.ErrNoFiles):
		return http.StatusBadRequest, ErrValidationFailed
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, ErrNoActiveSession
	case errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrTokenExpired):
		return http.StatusUnauthorized, ErrInvalidToken
	case errors.Is(err, errNoSelection),
		errors.Is(err, patients.ErrNotFound),
		errors.Is(err, notifications.ErrNotFound),
		errors.Is(err, reports.ErrNotFound),
		errors.Is(err, analytics.ErrNotFound),
		errors.Is(err, catalog.ErrSourceNotFound),
		errors.Is(err, uploads.ErrNotFound):
		return http.StatusNotFound, ErrNotFound
	case errors.Is(err, storage.ErrClosed),
		errors.Is(err, uploads.ErrClosed),
		errors.Is(err, vitals.ErrHubClosed):
		return http.StatusServiceUnavailable, ErrUnavailable
	}
	return http.StatusInternalServerError, ErrInternal
}

// respondError writes err as a JSON error; server-side failures are logged
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, label := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(LogRequestFailed)
	}
	writeError(w, status, label, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}
