package anomaly

import (
	"context"
	"errors"
	"strings"
	"testing"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	applogger "FinSight/pkg/logger"
)

type fakeStore struct {
	rows []models.Row
	err  error
}

func (f *fakeStore) Execute(_ context.Context, _ string, _ int) ([]models.Row, error) {
	return f.rows, f.err
}

type fakeIndex struct {
	matches  []models.SimilarityMatch
	searches int
}

func (f *fakeIndex) Add(_ context.Context, _ repository.Collection, _ models.LibraryRecord, _ []float32) error {
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ repository.Collection, _ []float32, _ int, _ *repository.SearchFilter) []models.SimilarityMatch {
	f.searches++
	return f.matches
}

func (f *fakeIndex) Count(_ context.Context, _ repository.Collection) (int, error) { return 0, nil }

func (f *fakeIndex) Clear(_ context.Context, _ repository.Collection) error { return nil }

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

type fakePublisher struct {
	alerts []models.AnomalyAlert
}

func (f *fakePublisher) PublishAlert(_ context.Context, a models.AnomalyAlert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

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

func anomalyRow(name string, ret, score float64) models.Row {
	return models.Row{
		"asset_name":    name,
		"asset_id":      name,
		"date":          "2026-03-10T00:00:00Z",
		"daily_return":  ret,
		"anomaly_type":  "return",
		"anomaly_score": score,
	}
}

func TestScanEmptyWindow(t *testing.T) {
	c := NewClassifier(&fakeStore{}, &fakeIndex{}, &fakeEmbedder{}, nil, nopMetrics{}, testLogger(t), 2.0)
	report := c.Scan(context.Background(), 30)
	if !report.Success {
		t.Fatalf("an empty window is not an error: %+v", report)
	}
	if report.AnomaliesFound != 0 || report.Message == "" {
		t.Fatalf("expected explanatory message: %+v", report)
	}
}

func TestScanStoreFailure(t *testing.T) {
	c := NewClassifier(&fakeStore{err: errors.New("boom")}, &fakeIndex{}, &fakeEmbedder{}, nil, nopMetrics{}, testLogger(t), 2.0)
	report := c.Scan(context.Background(), 30)
	if report.Success {
		t.Fatalf("expected failure")
	}
	if report.Error == "" {
		t.Fatalf("expected error detail")
	}
}

func TestScanGradesAndEnriches(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		anomalyRow("TSLA", -0.12, -4.5),
		anomalyRow("AAPL", 0.05, 3.1),
		anomalyRow("BTC", 0.03, 2.6),
	}}
	idx := &fakeIndex{matches: []models.SimilarityMatch{{ID: "flash_crash_2010", Similarity: 0.85}}}
	pub := &fakePublisher{}

	c := NewClassifier(store, idx, &fakeEmbedder{}, pub, nopMetrics{}, testLogger(t), 2.0)
	report := c.Scan(context.Background(), 7)
	if !report.Success {
		t.Fatalf("scan failed: %+v", report)
	}
	if report.AnomaliesFound != 3 {
		t.Fatalf("expected 3 anomalies, got %d", report.AnomaliesFound)
	}
	if report.BySeverity[models.SeverityCritical] != 1 ||
		report.BySeverity[models.SeverityHigh] != 1 ||
		report.BySeverity[models.SeverityMedium] != 1 {
		t.Fatalf("unexpected severity counts: %v", report.BySeverity)
	}
	if idx.searches != 3 {
		t.Fatalf("every top anomaly should be enriched, got %d searches", idx.searches)
	}
	if len(report.TopAnomalies) != 3 || len(report.TopAnomalies[0].SimilarEvents) != 1 {
		t.Fatalf("enrichment missing: %+v", report.TopAnomalies)
	}
	if report.TopAnomalies[0].Date != "2026-03-10" {
		t.Fatalf("date should be normalized to day precision: %s", report.TopAnomalies[0].Date)
	}
	// Only critical and high grade anomalies alert.
	if len(pub.alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(pub.alerts))
	}
}

func TestScanEmbedFailureLeavesAnomalyBare(t *testing.T) {
	store := &fakeStore{rows: []models.Row{anomalyRow("TSLA", -0.12, -4.5)}}
	c := NewClassifier(store, &fakeIndex{}, &fakeEmbedder{err: errors.New("sidecar down")}, nil, nopMetrics{}, testLogger(t), 2.0)
	report := c.Scan(context.Background(), 7)
	if !report.Success {
		t.Fatalf("enrichment failure must not fail the scan: %+v", report)
	}
	if len(report.TopAnomalies[0].SimilarEvents) != 0 {
		t.Fatalf("expected bare anomaly")
	}
}

func TestClassifyStoresAbsoluteScore(t *testing.T) {
	got := classify([]models.Row{anomalyRow("TSLA", -0.12, -4.5)})
	if len(got) != 1 {
		t.Fatalf("expected one anomaly")
	}
	if got[0].Score != 4.5 {
		t.Fatalf("negative mart score should be stored absolute, got %v", got[0].Score)
	}
	if got[0].Severity != models.SeverityCritical {
		t.Fatalf("expected critical severity, got %s", got[0].Severity)
	}
	if !strings.Contains(got[0].Description, "z-score 4.50") {
		t.Fatalf("description should carry the absolute z-score: %s", got[0].Description)
	}
}

func TestClassifyScoreFallback(t *testing.T) {
	rows := []models.Row{anomalyRow("DOGE", -0.035, 0)}
	got := classify(rows)
	if len(got) != 1 {
		t.Fatalf("expected one anomaly")
	}
	if got[0].Score < 3.49 || got[0].Score > 3.51 {
		t.Fatalf("expected fallback score near 3.5, got %v", got[0].Score)
	}
	if got[0].Severity != models.SeverityHigh {
		t.Fatalf("expected high severity from fallback, got %s", got[0].Severity)
	}
}
