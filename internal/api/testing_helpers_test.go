package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

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

type testEnv struct {
	store  *storage.MemoryStore
	server *Server
	router http.Handler
	hub    *vitals.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewMemoryStore()
	tokens := session.NewTokenIssuer("test-secret", time.Hour)
	hub := vitals.NewHub(vitals.NewGenerator(rand.New(rand.NewSource(1))), 5*time.Millisecond)
	up := uploads.NewManager(uploads.WithStepInterval(time.Millisecond))
	t.Cleanup(func() {
		hub.Close()
		up.Close()
	})

	srv := NewServer(Deps{
		Sessions:      session.NewManager(store, tokens),
		Patients:      patients.NewService(store, patients.WithRand(rand.New(rand.NewSource(1)))),
		Observations:  patients.NewObservationLog(store),
		Hub:           hub,
		Notifications: notifications.NewCenter(),
		Reports:       reports.NewCatalog(reports.Seed()),
		Analytics:     analytics.NewAnalyzer(analytics.Seed()),
		Predictor:     analytics.NewPredictor(rand.New(rand.NewSource(1))),
		Sources:       catalog.NewSources(catalog.SeedSources(), catalog.WithSyncDelay(time.Millisecond)),
		Uploads:       up,
	})

	return &testEnv{store: store, server: srv, router: srv.SetupRoutes(), hub: hub}
}

// login signs in and returns the bearer token
func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rr := e.do(t, "POST", LoginPath, "", LoginRequest{Username: "dr.house@icu.org", Password: "pw"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(AuthorizationHeader, BearerPrefix+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func storedKey(t *testing.T, store storage.Store, key string) bool {
	t.Helper()
	_, err := store.Get(context.Background(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}
