package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dmodels "FinSight/internal/domain/models"
	applogger "FinSight/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func sidecar(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Runner) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewRunner(srv.URL, 5*time.Second, 3, testLogger(t))
}

func TestClassify(t *testing.T) {
	_, runner := sidecar(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/classify" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		var body classifyRequest
		json.NewDecoder(req.Body).Decode(&body)
		if len(body.Labels) != len(dmodels.Intents()) {
			t.Errorf("expected all intent labels, got %v", body.Labels)
		}
		json.NewEncoder(w).Encode(classifyResponse{
			Labels: []string{"comparison", "data_retrieval"},
			Scores: []float64{0.82, 0.1},
		})
	})

	got := NewClassifier(runner).Classify(context.Background(), "compare AAPL and MSFT")
	if got.Intent != dmodels.IntentComparison {
		t.Fatalf("unexpected intent: %s", got.Intent)
	}
	if got.Confidence != 0.82 {
		t.Fatalf("unexpected confidence: %v", got.Confidence)
	}
	if len(got.AllIntents) != 2 || got.AllIntents["data_retrieval"] != 0.1 {
		t.Fatalf("expected the full score distribution, got %v", got.AllIntents)
	}
}

func TestClassifyFallsBackOnError(t *testing.T) {
	_, runner := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := NewClassifier(runner).Classify(context.Background(), "anything")
	if got.Confidence != 0 {
		t.Fatalf("failure must yield zero confidence, got %v", got.Confidence)
	}
	if got.Intent != dmodels.IntentDataRetrieval {
		t.Fatalf("unexpected fallback intent: %s", got.Intent)
	}
}

func TestSentimentScore(t *testing.T) {
	_, runner := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(sentimentResponse{Label: "positive", Score: 0.91})
	})

	got := NewSentiment(runner).Score(context.Background(), "markets rallied")
	if got.Label != "positive" || got.Score != 0.91 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Confidence != dmodels.RelevanceHigh {
		t.Fatalf("0.91 score should grade high confidence, got %s", got.Confidence)
	}
}

func TestSentimentNeutralOnFailure(t *testing.T) {
	_, runner := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	got := NewSentiment(runner).Score(context.Background(), "whatever")
	if got != dmodels.NeutralSentiment() {
		t.Fatalf("expected neutral fallback, got %+v", got)
	}
}

func TestEmbed(t *testing.T) {
	_, runner := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	})

	e := NewEmbedder(runner)
	vec, err := e.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 || e.Dimensions() != 3 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestEmbedRejectsWrongDimensions(t *testing.T) {
	_, runner := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1}})
	})

	if _, err := NewEmbedder(runner).Embed(context.Background(), "text"); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestEmbedErrorsOnTransportFailure(t *testing.T) {
	srv, runner := sidecar(t, func(w http.ResponseWriter, _ *http.Request) {})
	srv.Close()

	if _, err := NewEmbedder(runner).Embed(context.Background(), "text"); err == nil {
		t.Fatalf("expected transport error")
	}
}
