package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"stealthcompany.com/icudash/internal/analytics"
	"stealthcompany.com/icudash/internal/catalog"
)

// ListModelsHandler returns the model registry
func (s *Server) ListModelsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Models())
}

// ModelPerformanceHandler returns the model evaluation table
func (s *Server) ModelPerformanceHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.ModelPerformance())
}

// PredictionsHandler returns the prediction trend for ?range=
func (s *Server) PredictionsHandler(w http.ResponseWriter, r *http.Request) {
	rng, err := analytics.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"range":  rng,
		"series": s.predictor.Series(rng, s.now()),
	})
}

// AnalyticsHandler returns the population view with the ?patient= detail
func (s *Server) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	overview, err := s.analytics.Overview(r.URL.Query().Get("patient"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// ListDataSourcesHandler returns the data sources
func (s *Server) ListDataSourcesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sources.List())
}

// SyncDataSourceHandler runs a simulated sync and returns the updated source
func (s *Server) SyncDataSourceHandler(w http.ResponseWriter, r *http.Request) {
	src, err := s.sources.Sync(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}
