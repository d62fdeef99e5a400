//go:build integration

package repository

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/pkg/clickhouse"
	applogger "FinSight/pkg/logger"
)

// Covers the index contract the in-process tests cannot reach: the
// ReplacingMergeTree upsert (re-adding an id is last-write-wins under
// FINAL reads) and the add/search round-trip. Run against a local
// ClickHouse:
//
//	CLICKHOUSE_HOST=localhost go test -tags integration ./internal/repository/
func TestVectorIndexRoundTrip(t *testing.T) {
	host := os.Getenv("CLICKHOUSE_HOST")
	if host == "" {
		t.Skip("CLICKHOUSE_HOST not set")
	}
	port := 9000
	if p, err := strconv.Atoi(os.Getenv("CLICKHOUSE_PORT")); err == nil {
		port = p
	}

	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	client, err := clickhouse.NewClient(
		clickhouse.WithHost(host),
		clickhouse.WithPort(port),
		clickhouse.WithDatabase(envOr("CLICKHOUSE_DATABASE", "default")),
		clickhouse.WithCredentials(envOr("CLICKHOUSE_USER", "default"), os.Getenv("CLICKHOUSE_PASSWORD")),
	)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	idx := NewClickHouseVectorIndex(client, "ai_vectors_roundtrip_test", 2, log)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := idx.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	col := repository.CollectionPatterns
	if err := idx.Clear(ctx, col); err != nil {
		t.Fatalf("clear: %v", err)
	}

	vec := []float32{0.3, 0.1, 0.9, 0.2}
	rec := models.LibraryRecord{
		ID:          "golden_cross",
		Description: "first version",
		Metadata:    map[string]string{"severity": "high"},
	}
	if err := idx.Add(ctx, col, rec, vec); err != nil {
		t.Fatalf("add: %v", err)
	}
	rec.Description = "50-day moving average crosses above 200-day"
	if err := idx.Add(ctx, col, rec, vec); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	n, err := idx.Count(ctx, col)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("re-adding an id must upsert, got %d records", n)
	}

	matches := idx.Search(ctx, col, vec, 3, nil)
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}
	if matches[0].ID != "golden_cross" || matches[0].Description != rec.Description {
		t.Fatalf("search must surface the latest write: %+v", matches[0])
	}
	if matches[0].Similarity <= 0.95 {
		t.Fatalf("searching with the stored embedding should be near-exact, got %v", matches[0].Similarity)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
