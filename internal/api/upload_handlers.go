package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"stealthcompany.com/icudash/internal/uploads"
)

// UploadRequest lists the files of an upload
type UploadRequest struct {
	Files []uploads.FileInput `json:"files"`
}

// StartUploadHandler queues files and starts the simulated upload
func (s *Server) StartUploadHandler(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	job, err := s.uploads.Start(req.Files)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// GetUploadHandler returns the progress of an upload
func (s *Server) GetUploadHandler(w http.ResponseWriter, r *http.Request) {
	job, err := s.uploads.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// RemoveUploadFileHandler drops one file from an upload
func (s *Server) RemoveUploadFileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	job, err := s.uploads.RemoveFile(vars["id"], vars["fileID"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
