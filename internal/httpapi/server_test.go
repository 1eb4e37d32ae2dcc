package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"poursuite/internal/catalog"
	"poursuite/internal/config"
	"poursuite/internal/logging"
	"poursuite/internal/search"
	"poursuite/internal/testutil"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T, apiKey string, shards map[string][]testutil.Paragraph) *Server {
	t.Helper()

	dir := t.TempDir()
	for id, rows := range shards {
		testutil.CreateShard(t, dir, id, rows)
	}

	logger := zaptest.NewLogger(t)
	cat, err := catalog.Open(dir, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })

	cfg := config.Default()
	cfg.HTTP.APIKey = apiKey
	engine := search.New(cat, cfg.Search, logger, nil)
	return NewServer(engine, cat, cfg, logger, nil)
}

func doRequest(t *testing.T, s *Server, path, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func apiShards() map[string][]testutil.Paragraph {
	return map[string][]testutil.Paragraph{
		"2022": {
			{ProcessNumber: "0001111-11.2022.8.26.0100", Content: "Bloqueio via SISBAJUD", FilePath: "a.pdf", DocumentDate: "2022-03-10"},
			{ProcessNumber: "0002222-22.2022.8.26.0100", Content: "Consulta SISBAJUD sem saldo", FilePath: "b.pdf", DocumentDate: "2022-05-20"},
		},
	}
}

func TestAuthRejectsWhenNoKeyConfigured(t *testing.T) {
	s := newTestServer(t, "", nil)

	rec := doRequest(t, s, "/search", "anything")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "API key not configured")
}

func TestAuthRejectsWrongKey(t *testing.T) {
	s := newTestServer(t, testAPIKey, nil)

	assert.Equal(t, http.StatusForbidden, doRequest(t, s, "/search", "wrong").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, s, "/search", "").Code)
}

func TestAuthExemptsHealth(t *testing.T) {
	s := newTestServer(t, testAPIKey, nil)

	rec := doRequest(t, s, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsRouteDisabledWithoutHandler(t *testing.T) {
	s := newTestServer(t, testAPIKey, nil)
	assert.Equal(t, http.StatusNotFound, doRequest(t, s, "/metrics", "").Code)
}

func TestHandleSearch(t *testing.T) {
	s := newTestServer(t, testAPIKey, apiShards())

	rec := doRequest(t, s, "/search?keywords=sisbajud", testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Truncated"))

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalProcesses)
	assert.Equal(t, 1, resp.Page)
	assert.False(t, resp.Truncated)
	require.Len(t, resp.Results, 2)
	// Most recent mention first.
	assert.Equal(t, "0002222-22.2022.8.26.0100", resp.Results[0].ProcessNumber)
	assert.Equal(t, 1, resp.Results[0].MentionCount)
	require.Len(t, resp.Results[0].Mentions, 1)
	assert.Equal(t, "2022", resp.Results[0].Mentions[0].DBID)
	assert.Equal(t, "Consulta SISBAJUD sem saldo", resp.Results[0].Mentions[0].Content)
}

func TestHandleSearchEmptyCatalog(t *testing.T) {
	s := newTestServer(t, testAPIKey, nil)

	rec := doRequest(t, s, "/search?keywords=sisbajud", testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalProcesses)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestParamValidation(t *testing.T) {
	s := newTestServer(t, testAPIKey, nil)

	for _, path := range []string{
		"/search?page=0",
		"/search?page=abc",
		"/search?page_size=0",
		"/search?page_size=9999",
		"/search/export?page=-1",
	} {
		assert.Equal(t, http.StatusBadRequest, doRequest(t, s, path, testAPIKey).Code, path)
	}
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t, testAPIKey, apiShards())

	rec := doRequest(t, s, "/stats", testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		TotalShards int `json:"total_shards"`
		Shards      []struct {
			ID string `json:"id"`
		} `json:"shards"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalShards)
	require.Len(t, stats.Shards, 1)
	assert.Equal(t, "2022", stats.Shards[0].ID)
}

func TestAuditTrailRecordsSearches(t *testing.T) {
	s := newTestServer(t, testAPIKey, apiShards())

	dir := t.TempDir()
	trail, err := logging.OpenAuditTrail(dir)
	require.NoError(t, err)
	s.WithAudit(trail)

	require.Equal(t, http.StatusOK, doRequest(t, s, "/search?keywords=sisbajud", testAPIKey).Code)
	require.NoError(t, trail.Close())

	data, err := os.ReadFile(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"search"`)
	assert.Contains(t, string(data), `"keywords":"sisbajud"`)
}

func TestHandleExport(t *testing.T) {
	s := newTestServer(t, testAPIKey, apiShards())

	rec := doRequest(t, s, "/search/export?keywords=sisbajud&include_summary=true", testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	body := rec.Body.String()
	assert.Contains(t, body, "=== Search Results Summary ===")
	assert.Contains(t, body, "Process Number,Mention Count")
	assert.Contains(t, body, "0001111-11.2022.8.26.0100")
}
