package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware_RecordsRouteTemplate(t *testing.T) {
	t.Setenv("ENABLE_BUSINESS_METRICS", "true")

	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/api/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	for _, id := range []string{"P101", "P102"} {
		req := httptest.NewRequest("GET", "/api/patients/"+id, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `http_requests_total{endpoint="/api/patients/{id}",method="GET",status="404"} 2`)
	assert.False(t, strings.Contains(body, "P101"))
}

func TestResponseWriter_DefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)
	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecordFunctions_DisabledAreNoops(t *testing.T) {
	t.Setenv("ENABLE_BUSINESS_METRICS", "")

	assert.NotPanics(t, func() {
		RecordLogin("success")
		RecordPatientAdded()
		RecordVitalsSample("Critical")
		AddFeedSubscribers(1)
		RecordPublishFailure()
		RecordUploadJob("completed")
		RecordReportDownload("txt")
	})
}
