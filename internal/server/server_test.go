package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/config"
	"github.com/warrantylens/warrantylens/internal/core"
	"github.com/warrantylens/warrantylens/internal/core/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "results.json"), zap.NewNop())
	require.NoError(t, err)

	payload := &core.WarrantyPayload{StatusCode: 200}
	st.Put(core.NewSuccessResult("AAAA1111", 1, 1, payload, 0, core.Provenance{}))

	return New(config.ServerConfig{Host: "localhost", Port: 0}, st, zap.NewNop(), "test")
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.EqualValues(t, 1, body["results"])
}

func TestVersionEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "test")
}

func TestResultsSnapshotEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]*core.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, core.OutcomeSuccess, body["AAAA1111"].Outcome)
}

func TestSingleResultEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/aaaa1111", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/ZZZZ9999", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/bad!", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
