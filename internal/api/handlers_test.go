package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stealthcompany.com/icudash/internal/analytics"
	"stealthcompany.com/icudash/internal/catalog"
	"stealthcompany.com/icudash/internal/patients"
	"stealthcompany.com/icudash/internal/reports"
	"stealthcompany.com/icudash/internal/uploads"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", HealthPath, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "GET", "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp DashboardResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "Welcome back, dr.house", resp.Welcome)
	assert.Equal(t, 4, resp.Summary.Total)
	assert.Nil(t, resp.SelectedVitals)
	assert.Len(t, resp.Models, 2)
	assert.Len(t, resp.DataSources, 2)
	assert.Equal(t, 3, resp.UnreadNotifications)

	env.do(t, "POST", "/api/patients/P104/select", token, nil)
	rr = env.do(t, "GET", "/api/dashboard", token, nil)
	decodeBody(t, rr, &resp)
	require.NotNil(t, resp.SelectedVitals)
}

func TestPatients(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedIDs    []string
	}{
		{"list all", "/api/patients", http.StatusOK, []string{"P101", "P102", "P103", "P104"}},
		{"search by name", "/api/patients?q=jane", http.StatusOK, []string{"P102"}},
		{"search by condition", "/api/patients?q=SEPSIS", http.StatusOK, []string{"P103"}},
		{"search no match", "/api/patients?q=zzz", http.StatusOK, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "GET", tt.path, token, nil)
			require.Equal(t, tt.expectedStatus, rr.Code)

			var list []patients.Patient
			decodeBody(t, rr, &list)
			ids := make([]string, 0, len(list))
			for _, p := range list {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestAddPatient(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "POST", "/api/patients", token, patients.NewPatient{Name: "Ann Lee", Age: 70})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var errBody map[string]string
	decodeBody(t, rr, &errBody)
	assert.Equal(t, ErrValidationFailed, errBody["error"])
	assert.Equal(t, "Please fill in all required fields.", errBody["message"])

	rr = env.do(t, "POST", "/api/patients", token, patients.NewPatient{
		Name:      "Ann Lee",
		Age:       70,
		Condition: "Stroke",
		Status:    patients.StatusCritical,
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var added patients.Patient
	decodeBody(t, rr, &added)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Just now", added.LastUpdate)

	rr = env.do(t, "GET", "/api/patients", token, nil)
	var list []patients.Patient
	decodeBody(t, rr, &list)
	require.Len(t, list, 5)
	assert.Equal(t, added, list[4])

	rr = env.do(t, "GET", "/api/patients/"+added.ID, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSelectPatient(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "GET", "/api/patients/selected", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, "POST", "/api/patients/P999/select", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, "POST", "/api/patients/P102/select", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "GET", "/api/patients/selected", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var v patients.Vitals
	decodeBody(t, rr, &v)
	assert.Equal(t, patients.SeedPatients()[1].Vitals, v)
}

func TestObservations(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "POST", "/api/observations", token, patients.Observation{HeartRate: "80"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "POST", "/api/observations", token, patients.Observation{PatientID: "P101", HeartRate: "80"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, "GET", "/api/observations", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []patients.Observation
	decodeBody(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "80", list[0].HeartRate)
}

func TestMonitoring(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "GET", "/api/monitoring/P102", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp MonitoringResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "P102", resp.Assessment.PatientID)
	assert.Len(t, resp.Samples, 60)
	for _, s := range resp.Samples {
		assert.GreaterOrEqual(t, s.HeartRate, 90)
		assert.LessOrEqual(t, s.HeartRate, 110)
	}

	rr = env.do(t, "GET", "/api/monitoring/P999", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestModelsAndAnalytics(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "GET", "/api/ml-models", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var models []catalog.Model
	decodeBody(t, rr, &models)
	assert.Len(t, models, 3)

	rr = env.do(t, "GET", "/api/ml-models/performance", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"predictions default range", "/api/predictions", http.StatusOK},
		{"predictions 30d", "/api/predictions?range=30d", http.StatusOK},
		{"predictions bad range", "/api/predictions?range=1y", http.StatusBadRequest},
		{"analytics default", "/api/analytics", http.StatusOK},
		{"analytics patient", "/api/analytics?patient=P105", http.StatusOK},
		{"analytics unknown patient", "/api/analytics?patient=P999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "GET", tt.path, token, nil)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}

	rr = env.do(t, "GET", "/api/predictions?range=14d", token, nil)
	var pred struct {
		Range  analytics.Range        `json:"range"`
		Series []analytics.Prediction `json:"series"`
	}
	decodeBody(t, rr, &pred)
	assert.Equal(t, analytics.Range14d, pred.Range)
	assert.Len(t, pred.Series, 14)

	rr = env.do(t, "GET", "/api/analytics?patient=P105", token, nil)
	var overview analytics.Overview
	decodeBody(t, rr, &overview)
	assert.Equal(t, "Michael Brown", overview.Selected.Name)
}

func TestDataSources(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "POST", "/api/data-sources/ehr-data/sync", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var src catalog.Source
	decodeBody(t, rr, &src)
	assert.Equal(t, "just now", src.LastSync)

	rr = env.do(t, "POST", "/api/data-sources/pacs/sync", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, "GET", "/api/data-sources", token, nil)
	var list []catalog.Source
	decodeBody(t, rr, &list)
	assert.Equal(t, "just now", list[0].LastSync)
}

func TestUploads(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "POST", "/api/uploads", token, UploadRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var errBody map[string]string
	decodeBody(t, rr, &errBody)
	assert.Equal(t, "Please select files first", errBody["message"])

	rr = env.do(t, "POST", "/api/uploads", token, UploadRequest{Files: []uploads.FileInput{
		{Name: "a.csv", Size: 10}, {Name: "b.csv", Size: 20},
	}})
	require.Equal(t, http.StatusAccepted, rr.Code)
	var job uploads.Job
	decodeBody(t, rr, &job)
	require.Len(t, job.Files, 2)

	assert.Eventually(t, func() bool {
		rr := env.do(t, "GET", "/api/uploads/"+job.ID, token, nil)
		if rr.Code != http.StatusOK {
			return false
		}
		var got uploads.Job
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			return false
		}
		return got.Status == uploads.JobCompleted
	}, 2*time.Second, 5*time.Millisecond)

	rr = env.do(t, "DELETE", "/api/uploads/"+job.ID+"/files/"+job.Files[0].ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &job)
	assert.Len(t, job.Files, 1)

	rr = env.do(t, "GET", "/api/uploads/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	tests := []struct {
		name        string
		path        string
		expectedIDs []string
	}{
		{"all", "/api/reports", []string{"REP001", "REP002", "REP003", "REP004", "REP005"}},
		{"search", "/api/reports?q=john%20doe", []string{"REP001", "REP005"}},
		{"type filter", "/api/reports?type=Progress%20Note", []string{"REP002"}},
		{"status all", "/api/reports?status=all&type=all", []string{"REP001", "REP002", "REP003", "REP004", "REP005"}},
		{"status filter", "/api/reports?status=Generated", []string{"REP004"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "GET", tt.path, token, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			var list []reports.Report
			decodeBody(t, rr, &list)
			ids := make([]string, 0, len(list))
			for _, r := range list {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}

	rr := env.do(t, "GET", "/api/reports/facets", token, nil)
	var facets reports.Facets
	decodeBody(t, rr, &facets)
	assert.Equal(t, "all", facets.Types[0])
	assert.Len(t, facets.Statuses, 4)
}

func TestReportDownload(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "GET", "/api/reports/REP002/download", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentTypeText, rr.Header().Get(ContentTypeHeader))
	assert.Equal(t, `attachment; filename="Progress_Note_P102_2025-05-12.txt"`, rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), "Report ID: REP002\n")
	assert.Contains(t, rr.Body.String(), "This is a simulated report content.")

	rr = env.do(t, "GET", "/api/reports/REP999/download", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReportExport(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, "GET", "/api/reports/export?status=Completed", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentTypeXLSX, rr.Header().Get(ContentTypeHeader))

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reports")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	list := func(path string) NotificationsResponse {
		rr := env.do(t, "GET", path, token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var resp NotificationsResponse
		decodeBody(t, rr, &resp)
		return resp
	}

	assert.Len(t, list("/api/notifications").Notifications, 3)
	assert.Len(t, list("/api/notifications?filter=alerts").Notifications, 2)
	assert.Len(t, list("/api/notifications?q=MODEL").Notifications, 1)

	rr := env.do(t, "GET", "/api/notifications?filter=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "POST", "/api/notifications/1/read", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := list("/api/notifications?filter=unread")
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, 2, resp.UnreadCount)

	rr = env.do(t, "DELETE", "/api/notifications/2", token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, "DELETE", "/api/notifications/2", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, "DELETE", "/api/notifications", token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, list("/api/notifications").Notifications)
}

func TestStoreClosed(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	require.NoError(t, env.store.Close())

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"list patients", "GET", "/api/patients", nil},
		{"select patient", "POST", "/api/patients/P101/select", nil},
		{"list observations", "GET", "/api/observations", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, token, tt.body)
			require.Equal(t, http.StatusServiceUnavailable, rr.Code, rr.Body.String())

			var body map[string]string
			decodeBody(t, rr, &body)
			assert.Equal(t, ErrUnavailable, body["error"])
		})
	}
}
