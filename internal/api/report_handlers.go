package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"stealthcompany.com/icudash/internal/metrics"
	"stealthcompany.com/icudash/internal/reports"
)

func reportQuery(r *http.Request) reports.Query {
	q := r.URL.Query()
	return reports.Query{
		Search: q.Get("q"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
	}
}

// ListReportsHandler returns the reports matching ?q=&type=&status=
func (s *Server) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.List(reportQuery(r)))
}

// ReportFacetsHandler returns the type and status filter values
func (s *Server) ReportFacetsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.Facets())
}

// DownloadReportHandler returns the plain-text rendering of a report
func (s *Server) DownloadReportHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}

	body := reports.Render(rep)
	metrics.RecordReportDownload("txt")

	w.Header().Set(ContentTypeHeader, ContentTypeText)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.FileName(rep)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// ExportReportsHandler returns the filtered report list as a spreadsheet
func (s *Server) ExportReportsHandler(w http.ResponseWriter, r *http.Request) {
	data, err := reports.Export(s.reports.List(reportQuery(r)))
	if err != nil {
		respondError(w, r, err)
		return
	}

	metrics.RecordReportDownload("xlsx")

	w.Header().Set(ContentTypeHeader, ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.ExportFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
