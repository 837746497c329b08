package api

import (
	"github.com/gorilla/mux"

	"stealthcompany.com/icudash/internal/metrics"
)

// SetupRoutes configures and returns the HTTP router
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(metrics.MetricsMiddleware)
	r.Use(s.AuthMiddleware)

	r.HandleFunc(HealthPath, s.HealthHandler).Methods("GET")
	r.Handle(MetricsPath, metrics.Handler()).Methods("GET")

	// Session
	r.HandleFunc(LoginPath, s.LoginHandler).Methods("POST")
	r.HandleFunc(SessionPath, s.SessionHandler).Methods("GET")
	r.HandleFunc("/api/auth/logout", s.LogoutHandler).Methods("POST")
	r.HandleFunc("/api/auth/refresh", s.RefreshHandler).Methods("POST")

	r.HandleFunc("/api/dashboard", s.DashboardHandler).Methods("GET")

	// Patients
	r.HandleFunc("/api/patients", s.ListPatientsHandler).Methods("GET")
	r.HandleFunc("/api/patients", s.AddPatientHandler).Methods("POST")
	r.HandleFunc("/api/patients/selected", s.SelectedPatientHandler).Methods("GET")
	r.HandleFunc("/api/patients/{id}", s.GetPatientHandler).Methods("GET")
	r.HandleFunc("/api/patients/{id}/select", s.SelectPatientHandler).Methods("POST")

	r.HandleFunc("/api/observations", s.ListObservationsHandler).Methods("GET")
	r.HandleFunc("/api/observations", s.RecordObservationHandler).Methods("POST")

	// Monitoring
	r.HandleFunc("/api/monitoring/{id}", s.MonitoringHandler).Methods("GET")
	r.HandleFunc("/api/monitoring/{id}/stream", s.VitalsStreamHandler).Methods("GET")

	// Models and analytics
	r.HandleFunc("/api/ml-models", s.ListModelsHandler).Methods("GET")
	r.HandleFunc("/api/ml-models/performance", s.ModelPerformanceHandler).Methods("GET")
	r.HandleFunc("/api/predictions", s.PredictionsHandler).Methods("GET")
	r.HandleFunc("/api/analytics", s.AnalyticsHandler).Methods("GET")

	// Data sources and uploads
	r.HandleFunc("/api/data-sources", s.ListDataSourcesHandler).Methods("GET")
	r.HandleFunc("/api/data-sources/{id}/sync", s.SyncDataSourceHandler).Methods("POST")
	r.HandleFunc("/api/uploads", s.StartUploadHandler).Methods("POST")
	r.HandleFunc("/api/uploads/{id}", s.GetUploadHandler).Methods("GET")
	r.HandleFunc("/api/uploads/{id}/files/{fileID}", s.RemoveUploadFileHandler).Methods("DELETE")

	// Reports
	r.HandleFunc("/api/reports", s.ListReportsHandler).Methods("GET")
	r.HandleFunc("/api/reports/facets", s.ReportFacetsHandler).Methods("GET")
	r.HandleFunc("/api/reports/export", s.ExportReportsHandler).Methods("GET")
	r.HandleFunc("/api/reports/{id}/download", s.DownloadReportHandler).Methods("GET")

	// Notifications
	r.HandleFunc("/api/notifications", s.ListNotificationsHandler).Methods("GET")
	r.HandleFunc("/api/notifications", s.ClearNotificationsHandler).Methods("DELETE")
	r.HandleFunc("/api/notifications/{id}/read", s.MarkNotificationReadHandler).Methods("POST")
	r.HandleFunc("/api/notifications/{id}", s.DismissNotificationHandler).Methods("DELETE")

	return r
}
