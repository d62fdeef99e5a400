package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"FinSight/internal/anomaly"
	"FinSight/internal/catalog"
	"FinSight/internal/domain/models"
	"FinSight/internal/domain/service"
	"FinSight/internal/nlsql"
	"FinSight/internal/usecase"
)

type countingReasoner struct {
	fakeReasoner
	sqlCalls int
}

func (r *countingReasoner) GenerateSQL(_ context.Context, _, _ string) (string, bool) {
	r.sqlCalls++
	return "", false
}

type lowConfidenceClassifier struct{}

func (lowConfidenceClassifier) Classify(_ context.Context, _ string) models.IntentResult {
	return models.IntentResult{Intent: models.IntentDataRetrieval, Confidence: 0.2}
}

func newQueryTestHandler(t *testing.T, store *fakeStore, cl service.IntentClassifier, r service.Reasoner) *QueryHandler {
	t.Helper()
	log := testLogger(t)
	queries := nlsql.NewService(cl, nlsql.NewSynthesizer(), nlsql.NewGuard(),
		r, catalog.New(), store, nopMetrics{}, log, 100)
	scanner := anomaly.NewClassifier(store, fakeIndex{}, fakeEmbedder{}, nil, nopMetrics{}, log, 2.0)
	analyzer := usecase.NewAnalyzer(queries, scanner, store, fakeIndex{}, fakeEmbedder{},
		fakeSentiment{}, r, nopMetrics{}, log)
	return NewQueryHandler(analyzer, log)
}

func doQuery(h *QueryHandler, e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	h.Query(e.NewContext(req, rec))
	return rec
}

func TestQueryPassesRequestLimit(t *testing.T) {
	store := &fakeStore{rows: []models.Row{{"ticker": "AAPL", "total_return": 0.2}}}
	h := newQueryTestHandler(t, store, fakeClassifier{}, fakeReasoner{})
	e := echo.New()

	rec := doQuery(h, e, `{"question": "show me top 5 stocks by return", "limit": 5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("query failed: %d %s", rec.Code, rec.Body.String())
	}
	if store.limit != 5 {
		t.Fatalf("request asked for limit 5, executor received %d", store.limit)
	}
}

func TestQueryDefaultsLimit(t *testing.T) {
	store := &fakeStore{rows: []models.Row{{"ticker": "AAPL"}}}
	h := newQueryTestHandler(t, store, fakeClassifier{}, fakeReasoner{})
	e := echo.New()

	rec := doQuery(h, e, `{"question": "show me top stocks by return"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("query failed: %d %s", rec.Code, rec.Body.String())
	}
	if store.limit != 100 {
		t.Fatalf("omitted limit should default to 100, executor received %d", store.limit)
	}
}

func TestQueryUseAIFlag(t *testing.T) {
	store := &fakeStore{}
	r := &countingReasoner{}
	h := newQueryTestHandler(t, store, lowConfidenceClassifier{}, r)
	e := echo.New()

	doQuery(h, e, `{"question": "gibberish question", "use_ai": false}`)
	if r.sqlCalls != 0 {
		t.Fatalf("use_ai=false must keep the reasoner out, got %d calls", r.sqlCalls)
	}

	// Omitting the flag defaults to the AI path.
	doQuery(h, e, `{"question": "gibberish question"}`)
	if r.sqlCalls != 1 {
		t.Fatalf("expected one reasoner call on the default path, got %d", r.sqlCalls)
	}
}
