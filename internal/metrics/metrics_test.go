package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_New(t *testing.T) {
	m := New()
	assert.NotNil(t, m.RequestsTotal)
	assert.NotNil(t, m.AnalysesTotal)
	assert.NotNil(t, m.AnalysisDuration)
	assert.NotNil(t, m.TokensTotal)
	assert.NotNil(t, m.DocumentsStored)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest("/api/upload", "202")
	m.RecordRequest("/api/upload", "202")
	m.RecordRequest("/api/projects", "200")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `teamie_requests_total{route="/api/upload",status="202"} 2`)
	assert.Contains(t, body, `teamie_requests_total{route="/api/projects",status="200"} 1`)
}

func TestMetrics_RecordAnalysis(t *testing.T) {
	m := New()
	m.RecordAnalysis("gpt-4o-mini", "success")
	m.RecordAnalysis("gpt-4o-mini", "recovered")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `teamie_analyses_total{model="gpt-4o-mini",outcome="success"} 1`)
	assert.Contains(t, body, `teamie_analyses_total{model="gpt-4o-mini",outcome="recovered"} 1`)
}

func TestMetrics_RecordTokens(t *testing.T) {
	m := New()
	m.RecordTokens("gpt-4o-mini", 500, 120)
	m.RecordTokens("gpt-4o-mini", 100, 30)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `teamie_llm_tokens_total{direction="prompt",model="gpt-4o-mini"} 600`)
	assert.Contains(t, body, `teamie_llm_tokens_total{direction="completion",model="gpt-4o-mini"} 150`)
}

func TestMetrics_ObserveAnalysisDuration(t *testing.T) {
	m := New()
	m.ObserveAnalysisDuration("gpt-5-nano", 4.2)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, "teamie_analysis_duration_seconds")
}

func TestMetrics_RecordError(t *testing.T) {
	m := New()
	m.RecordError("analyzer", "not_configured")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `teamie_errors_total{component="analyzer",type="not_configured"} 1`)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.DocumentsStored.Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, "teamie_documents_stored_total 1")
}

func getMetricsBody(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	return strings.TrimSpace(string(body))
}
