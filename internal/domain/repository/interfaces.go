package repository

import (
	"context"

	"FinSight/internal/domain/models"
)

// RowStore executes read-only SQL against the warehouse.
type RowStore interface {
	// Execute runs a single SELECT and returns normalized rows. A LIMIT
	// clause is appended when the statement carries none.
	Execute(ctx context.Context, sql string, limit int) ([]models.Row, error)
}

// Collection names the vector index partitions.
type Collection string

const (
	CollectionPatterns  Collection = "market_patterns"
	CollectionAnomalies Collection = "anomaly_history"
	CollectionEvents    Collection = "financial_events"
)

// SearchFilter narrows a similarity search.
type SearchFilter struct {
	// MinSeverity keeps only matches whose metadata severity ranks at or
	// above this grade. Empty means no filtering.
	MinSeverity models.Severity
}

// VectorIndex stores embedded descriptions and answers nearest-neighbour
// queries. Search degrades to an empty result on any failure.
type VectorIndex interface {
	Add(ctx context.Context, col Collection, rec models.LibraryRecord, embedding []float32) error
	Search(ctx context.Context, col Collection, embedding []float32, topK int, filter *SearchFilter) []models.SimilarityMatch
	Count(ctx context.Context, col Collection) (int, error)
	Clear(ctx context.Context, col Collection) error
}

// AlertPublisher fans classified anomalies out to subscribers.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert models.AnomalyAlert) error
}

// Metrics records domain-level observations.
type Metrics interface {
	RecordQuery(method string, success bool)
	RecordReasonerCall(outcome string)
	RecordAnomalies(severity string, n int)
	RecordLatency(op string, seconds float64)
}
