package nlsql

import (
	"context"
	"errors"
	"testing"

	"FinSight/internal/catalog"
	"FinSight/internal/domain/models"
	applogger "FinSight/pkg/logger"
)

type fakeClassifier struct {
	res models.IntentResult
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) models.IntentResult {
	return f.res
}

type fakeReasoner struct {
	sql    string
	ok     bool
	called int
}

func (f *fakeReasoner) Generate(_ context.Context, _ string, _ int) (string, bool) {
	return f.sql, f.ok
}

func (f *fakeReasoner) GenerateSQL(_ context.Context, _, _ string) (string, bool) {
	f.called++
	return f.sql, f.ok
}

func (f *fakeReasoner) ExplainPattern(_ context.Context, _, _ string) (string, bool) {
	return "", false
}

func (f *fakeReasoner) Available() bool { return f.ok }

func (f *fakeReasoner) Usage() models.UsageStats { return models.UsageStats{} }

type fakeStore struct {
	rows  []models.Row
	err   error
	sql   string
	limit int
}

func (f *fakeStore) Execute(_ context.Context, sql string, limit int) ([]models.Row, error) {
	f.sql = sql
	f.limit = limit
	return f.rows, f.err
}

type nopMetrics struct{}

func (nopMetrics) RecordQuery(string, bool)    {}
func (nopMetrics) RecordReasonerCall(string)   {}
func (nopMetrics) RecordAnomalies(string, int) {}
func (nopMetrics) RecordLatency(string, float64) {
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestService(cl *fakeClassifier, r *fakeReasoner, st *fakeStore, t *testing.T) *Service {
	return NewService(cl, NewSynthesizer(), NewGuard(), r, catalog.New(), st, nopMetrics{}, testLogger(t), 100)
}

func TestProcessTemplatePath(t *testing.T) {
	cl := &fakeClassifier{res: models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.9}}
	r := &fakeReasoner{}
	st := &fakeStore{rows: []models.Row{{"ticker": "AAPL"}, {"ticker": "MSFT"}}}

	res := newTestService(cl, r, st, t).Process(context.Background(), "show me top 5 stocks by return", 0, true)
	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}
	if res.Method != models.MethodTemplate {
		t.Fatalf("expected template method, got %s", res.Method)
	}
	if res.RowCount != 2 || len(res.Rows) != 2 {
		t.Fatalf("row count mismatch: %+v", res)
	}
	if r.called != 0 {
		t.Fatalf("reasoner must not run on the template path")
	}
}

func TestProcessHonorsRequestLimit(t *testing.T) {
	cl := &fakeClassifier{res: models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.9}}
	st := &fakeStore{rows: []models.Row{{"ticker": "AAPL"}}}
	svc := newTestService(cl, &fakeReasoner{}, st, t)

	if res := svc.Process(context.Background(), "show me top 5 stocks by return", 5, true); !res.Success {
		t.Fatalf("expected success: %+v", res)
	}
	if st.limit != 5 {
		t.Fatalf("requested limit must reach the store, got %d", st.limit)
	}

	// Non-positive limits fall back to the configured default.
	svc.Process(context.Background(), "show me top stocks by return", 0, true)
	if st.limit != 100 {
		t.Fatalf("expected default limit 100, got %d", st.limit)
	}
}

func TestProcessAIPathOnLowConfidence(t *testing.T) {
	cl := &fakeClassifier{res: models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.4}}
	r := &fakeReasoner{sql: "SELECT 1 FROM mart_asset_performance", ok: true}
	st := &fakeStore{rows: []models.Row{{"1": float64(1)}}}

	res := newTestService(cl, r, st, t).Process(context.Background(), "show me top 5 stocks by return", 0, true)
	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}
	if res.Method != models.MethodAIGenerated {
		t.Fatalf("expected ai_generated, got %s", res.Method)
	}
	if r.called != 1 {
		t.Fatalf("expected one reasoner call, got %d", r.called)
	}
}

func TestProcessNoSQL(t *testing.T) {
	cl := &fakeClassifier{res: models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.4}}
	r := &fakeReasoner{ok: false}
	st := &fakeStore{}

	res := newTestService(cl, r, st, t).Process(context.Background(), "gibberish question", 0, true)
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Suggestion == "" {
		t.Fatalf("expected a suggestion for the caller")
	}
}

func TestProcessRejectsUnsafeSQL(t *testing.T) {
	cl := &fakeClassifier{res: models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.4}}
	r := &fakeReasoner{sql: "DROP TABLE mart_asset_performance", ok: true}
	st := &fakeStore{}

	res := newTestService(cl, r, st, t).Process(context.Background(), "what is going on", 0, true)
	if res.Success {
		t.Fatalf("expected validation failure")
	}
	if st.sql != "" {
		t.Fatalf("unsafe SQL must never reach the store")
	}
}

func TestProcessExecutionError(t *testing.T) {
	cl := &fakeClassifier{res: models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.9}}
	r := &fakeReasoner{}
	st := &fakeStore{err: errors.New("connection refused")}

	res := newTestService(cl, r, st, t).Process(context.Background(), "show me top stocks by return", 0, true)
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Error != "connection refused" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
}

func TestProcessAIDisabled(t *testing.T) {
	cl := &fakeClassifier{res: models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.2}}
	r := &fakeReasoner{sql: "SELECT 1", ok: true}
	st := &fakeStore{rows: []models.Row{}}

	res := newTestService(cl, r, st, t).Process(context.Background(), "show me top stocks by return", 0, false)
	if !res.Success {
		t.Fatalf("expected template fallback to succeed: %+v", res)
	}
	if res.Method != models.MethodTemplate {
		t.Fatalf("expected template method, got %s", res.Method)
	}
	if r.called != 0 {
		t.Fatalf("reasoner must not run when AI is disabled")
	}
}
