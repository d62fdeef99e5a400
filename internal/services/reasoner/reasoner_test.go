package reasoner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinSight/internal/service/ratelimit"
	applogger "FinSight/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordQuery(string, bool)      {}
func (nopMetrics) RecordReasonerCall(string)     {}
func (nopMetrics) RecordAnomalies(string, int)   {}
func (nopMetrics) RecordLatency(string, float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestReasoner(t *testing.T, baseURL string, daily int) *Reasoner {
	t.Helper()
	limiter := ratelimit.NewUsageLimiter(daily, 1000, 0)
	r := New(Options{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, limiter, nopMetrics{}, testLogger(t))
	return r.WithSleep(func(time.Duration) {})
}

func TestGenerateCachesCompletions(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header: %q", got)
		}
		w.Write([]byte(`[{"generated_text": "the answer"}]`))
	}))
	defer srv.Close()

	r := newTestReasoner(t, srv.URL, 100)

	got, ok := r.Generate(context.Background(), "question", 100)
	if !ok || got != "the answer" {
		t.Fatalf("unexpected result: %q ok=%v", got, ok)
	}

	got, ok = r.Generate(context.Background(), "question", 100)
	if !ok || got != "the answer" {
		t.Fatalf("unexpected cached result: %q ok=%v", got, ok)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one network call, got %d", n)
	}

	stats := r.Usage()
	if stats.RequestsToday != 1 {
		t.Fatalf("cache hits must not consume quota, got %d", stats.RequestsToday)
	}
}

func TestGenerateRateLimitShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[{"generated_text": "x"}]`))
	}))
	defer srv.Close()

	r := newTestReasoner(t, srv.URL, 0)
	if _, ok := r.Generate(context.Background(), "question", 100); ok {
		t.Fatalf("expected rate-limited call to fail")
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("exhausted quota must not reach the network, got %d calls", n)
	}
}

func TestGenerateRetriesWhileModelLoads(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"generated_text": "ready"}]`))
	}))
	defer srv.Close()

	var slept time.Duration
	limiter := ratelimit.NewUsageLimiter(100, 1000, 0)
	r := New(Options{APIKey: "k", BaseURL: srv.URL, Model: "m", Timeout: 5 * time.Second},
		limiter, nopMetrics{}, testLogger(t)).
		WithSleep(func(d time.Duration) { slept += d })

	got, ok := r.Generate(context.Background(), "question", 100)
	if !ok || got != "ready" {
		t.Fatalf("unexpected result: %q ok=%v", got, ok)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected retry, got %d calls", n)
	}
	if slept != modelLoadingWait {
		t.Fatalf("expected %v loading wait, slept %v", modelLoadingWait, slept)
	}
}

func TestGenerateFailureDoesNotConsumeQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := newTestReasoner(t, srv.URL, 100)
	if _, ok := r.Generate(context.Background(), "question", 100); ok {
		t.Fatalf("expected failure")
	}
	if stats := r.Usage(); stats.RequestsToday != 0 {
		t.Fatalf("failed calls must not consume quota, got %d", stats.RequestsToday)
	}
}

func TestGenerateUnavailableWithoutKey(t *testing.T) {
	limiter := ratelimit.NewUsageLimiter(100, 1000, 0)
	r := New(Options{BaseURL: "http://localhost:1", Model: "m"}, limiter, nopMetrics{}, testLogger(t))
	if r.Available() {
		t.Fatalf("expected unavailable without an API key")
	}
	if _, ok := r.Generate(context.Background(), "question", 100); ok {
		t.Fatalf("expected degraded mode")
	}
	if r.Usage().Available {
		t.Fatalf("usage should report unavailability")
	}
}

func TestGenerateSQLCleansOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"generated_text": "` + "```sql\\nSQL Query: SELECT 1;\\n```" + `"}]`))
	}))
	defer srv.Close()

	r := newTestReasoner(t, srv.URL, 100)
	got, ok := r.GenerateSQL(context.Background(), "q", "schema")
	if !ok {
		t.Fatalf("expected success")
	}
	if got != "SELECT 1" {
		t.Fatalf("unexpected SQL: %q", got)
	}
}

func TestCleanSQL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"SELECT 1", "SELECT 1"},
		{"SELECT 1;", "SELECT 1"},
		{"```sql\nSELECT 1\n```", "SELECT 1"},
		{"SQL Query: SELECT 1", "SELECT 1"},
		{"Query:  SELECT a FROM t;;", "SELECT a FROM t"},
	}
	for _, c := range cases {
		if got := CleanSQL(c.in); got != c.want {
			t.Fatalf("CleanSQL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanExplanation(t *testing.T) {
	got := CleanExplanation("Explanation:  prices  spiked\n sharply ")
	if got != "prices spiked sharply" {
		t.Fatalf("unexpected explanation: %q", got)
	}
}
