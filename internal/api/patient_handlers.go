package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/catalog"
	"stealthcompany.com/icudash/internal/metrics"
	"stealthcompany.com/icudash/internal/patients"
	"stealthcompany.com/icudash/internal/session"
)

// DashboardResponse is the dashboard home
type DashboardResponse struct {
	Welcome             string           `json:"welcome"`
	User                session.User     `json:"user"`
	Summary             patients.Summary `json:"summary"`
	SelectedVitals      *patients.Vitals `json:"selectedVitals,omitempty"`
	Models              []catalog.Model  `json:"models"`
	DataSources         []catalog.Source `json:"dataSources"`
	UnreadNotifications int              `json:"unreadNotifications"`
}

// DashboardHandler returns the home tiles
func (s *Server) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	user, err := GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, r, session.ErrNoSession)
		return
	}

	summary, err := s.patients.Summarize(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := DashboardResponse{
		Welcome:             "Welcome back, " + user.Name,
		User:                user,
		Summary:             summary,
		Models:              catalog.DashboardModels(),
		DataSources:         s.sources.List(),
		UnreadNotifications: s.notifications.UnreadCount(),
	}

	selected, ok, err := s.patients.Selected(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if ok {
		resp.SelectedVitals = &selected
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListPatientsHandler returns the patient list filtered by ?q=
func (s *Server) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.patients.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AddPatientHandler appends a patient to the list
func (s *Server) AddPatientHandler(w http.ResponseWriter, r *http.Request) {
	var in patients.NewPatient
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := s.patients.Add(r.Context(), in)
	if err != nil {
		if errors.Is(err, patients.ErrValidation) {
			log.Warn().Str("name", in.Name).Msg("Add patient rejected")
		}
		respondError(w, r, err)
		return
	}

	metrics.RecordPatientAdded()
	writeJSON(w, http.StatusCreated, p)
}

// GetPatientHandler returns one patient
func (s *Server) GetPatientHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.patients.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SelectPatientHandler stores the patient's vitals as the selected snapshot
func (s *Server) SelectPatientHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.patients.Select(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SelectedPatientHandler returns the selected-patient vitals snapshot
func (s *Server) SelectedPatientHandler(w http.ResponseWriter, r *http.Request) {
	v, ok, err := s.patients.Selected(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !ok {
		respondError(w, r, errNoSelection)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ListObservationsHandler returns the manual data-entry log
func (s *Server) ListObservationsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.observations.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// RecordObservationHandler appends a manual data entry
func (s *Server) RecordObservationHandler(w http.ResponseWriter, r *http.Request) {
	var obs patients.Observation
	if err := decodeJSON(r, &obs); err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := s.observations.Record(r.Context(), obs)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
