package httpserver_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/internal/httpserver"
	"github.com/habiliai/answerdesk/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httpserver.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kb.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Category,Question,Answer,Priority,Last Updated\n"+
			"IT,How do I reset my password?,Use the self-service portal.,1,\n"+
			"HR,How many vacation days do I get?,Twenty per year.,2,\n",
	), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conf := config.NewKnowledgeConfig()
	conf.CSVPath = path
	conf.UnansweredPath = filepath.Join(t.TempDir(), "unanswered.csv")
	store := knowledge.NewCSVStore(conf, logger)

	return httpserver.New(config.NewServerConfig(), store, logger)
}

func doGET(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doGET(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "answerdesk", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doGET(t, srv.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["uptime"])
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doGET(t, srv.Handler(), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["totalQuestions"])
	assert.EqualValues(t, 2, body["categories"])

	byCategory, ok := body["byCategory"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, byCategory["IT"])
	assert.EqualValues(t, 1, byCategory["HR"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
