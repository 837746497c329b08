// Package api exposes the dashboard over HTTP/JSON with a session gate and a
// websocket stream for live vitals.
package api

import (
	"time"

	"stealthcompany.com/icudash/internal/analytics"
	"stealthcompany.com/icudash/internal/catalog"
	"stealthcompany.com/icudash/internal/notifications"
	"stealthcompany.com/icudash/internal/patients"
	"stealthcompany.com/icudash/internal/reports"
	"stealthcompany.com/icudash/internal/session"
	"stealthcompany.com/icudash/internal/uploads"
	"stealthcompany.com/icudash/internal/vitals"
)

// Deps are the services the API serves
type Deps struct {
	Sessions      *session.Manager
	Patients      *patients.Service
	Observations  *patients.ObservationLog
	Hub           *vitals.Hub
	Notifications *notifications.Center
	Reports       *reports.Catalog
	Analytics     *analytics.Analyzer
	Predictor     *analytics.Predictor
	Sources       *catalog.Sources
	Uploads       *uploads.Manager
}

// Server holds the handlers' dependencies
type Server struct {
	sessions      *session.Manager
	patients      *patients.Service
	observations  *patients.ObservationLog
	hub           *vitals.Hub
	notifications *notifications.Center
	reports       *reports.Catalog
	analytics     *analytics.Analyzer
	predictor     *analytics.Predictor
	sources       *catalog.Sources
	uploads       *uploads.Manager
	now           func() time.Time
}

// NewServer creates a server over deps
func NewServer(deps Deps) *Server {
	return &Server{
		sessions:      deps.Sessions,
		patients:      deps.Patients,
		observations:  deps.Observations,
		hub:           deps.Hub,
		notifications: deps.Notifications,
		reports:       deps.Reports,
		analytics:     deps.Analytics,
		predictor:     deps.Predictor,
		sources:       deps.Sources,
		uploads:       deps.Uploads,
		now:           time.Now,
	}
}
