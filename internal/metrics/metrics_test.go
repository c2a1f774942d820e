package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	b, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.RecordAttempt("mega", false)
	m.RecordAttempt("sections", true)
	m.RecordReport("ai", "sections", time.Second, nil)
	m.RecordLLMCall("openai", time.Second, 100, 20, nil)
	m.RecordLLMCall("claude", time.Second, 0, 0, errors.New("boom"))
	m.RecordExtraction(3, nil)
	done := m.StartRequest()
	done("GET", "/api/v1/cases/:id", 200)

	out := scrape(t, m)
	for _, want := range []string{
		`laudo_report_attempts_total{accepted="false",strategy="mega"} 1`,
		`laudo_report_attempts_total{accepted="true",strategy="sections"} 1`,
		`laudo_report_generated_total{mode="ai",status="success",strategy="sections"} 1`,
		`laudo_llm_tokens_total{direction="in",provider="openai"} 100`,
		`laudo_llm_calls_total{provider="claude",status="error"} 1`,
		`laudo_extract_runs_total{status="success"} 1`,
		`laudo_http_requests_total{method="GET",path="/api/v1/cases/:id",status="200"} 1`,
		`laudo_http_in_flight_requests 0`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordAttempt("mega", true)
	m.RecordReport("template", "", 0, nil)
	m.RecordLLMCall("", 0, 1, 1, nil)
	m.RecordExtraction(0, errors.New("x"))
	m.StartRequest()("GET", "/", 200)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("got %d", rec.Code)
	}
}
