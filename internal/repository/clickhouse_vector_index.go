package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/pkg/clickhouse"
	"FinSight/pkg/logger"
)

// ClickHouseVectorIndex persists embedded descriptions in a
// ReplacingMergeTree keyed by (collection, id), so re-adding an id is a
// last-write-wins upsert. The corpora are small curated libraries, so
// nearest-neighbour scoring runs in process over the full collection.
type ClickHouseVectorIndex struct {
	client    *clickhouse.Client
	table     string
	overFetch int
	log       *logger.Logger
}

// NewClickHouseVectorIndex creates the vector index.
func NewClickHouseVectorIndex(client *clickhouse.Client, table string, overFetch int, log *logger.Logger) *ClickHouseVectorIndex {
	if table == "" {
		table = "ai_vectors"
	}
	if overFetch <= 0 {
		overFetch = 2
	}
	return &ClickHouseVectorIndex{client: client, table: table, overFetch: overFetch, log: log}
}

// Schema returns the DDL for the vector table.
func (x *ClickHouseVectorIndex) Schema() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    collection String,
    id String,
    description String,
    embedding Array(Float32),
    metadata String,
    updated_at DateTime
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY (collection, id)`, x.table)}
}

// Init creates the vector table if missing.
func (x *ClickHouseVectorIndex) Init(ctx context.Context) error {
	return x.client.InitSchema(ctx, x.Schema())
}

// Add upserts a record into a collection.
func (x *ClickHouseVectorIndex) Add(ctx context.Context, col repository.Collection, rec models.LibraryRecord, embedding []float32) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (collection, id, description, embedding, metadata, updated_at) VALUES (?, ?, ?, ?, ?, ?)", x.table)
	if _, err := x.client.DB().ExecContext(ctx, stmt,
		string(col), rec.ID, rec.Description, embedding, string(meta), time.Now()); err != nil {
		return fmt.Errorf("insert vector: %w", err)
	}
	return nil
}

type scoredRecord struct {
	id          string
	description string
	metadata    map[string]string
	similarity  float64
}

// Search returns the nearest matches by cosine similarity, most similar
// first. Any failure degrades to an empty result: similarity context is
// enrichment, never a hard dependency.
func (x *ClickHouseVectorIndex) Search(ctx context.Context, col repository.Collection, embedding []float32, topK int, filter *repository.SearchFilter) []models.SimilarityMatch {
	if topK <= 0 || len(embedding) == 0 {
		return nil
	}

	stmt := fmt.Sprintf("SELECT id, description, embedding, metadata FROM %s FINAL WHERE collection = ?", x.table)
	rows, err := x.client.DB().QueryContext(ctx, stmt, string(col))
	if err != nil {
		x.log.Warn("vector search failed", logger.Error(err), logger.String("collection", string(col)))
		return nil
	}
	defer rows.Close()

	var candidates []scoredRecord
	for rows.Next() {
		var (
			id, description, metaJSON string
			vec                       []float32
		)
		if err := rows.Scan(&id, &description, &vec, &metaJSON); err != nil {
			x.log.Warn("vector row scan failed", logger.Error(err))
			return nil
		}

		meta := map[string]string{}
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
				meta = map[string]string{}
			}
		}
		candidates = append(candidates, scoredRecord{
			id:          id,
			description: description,
			metadata:    meta,
			similarity:  cosineSimilarity(embedding, vec),
		})
	}
	if err := rows.Err(); err != nil {
		x.log.Warn("vector search failed", logger.Error(err))
		return nil
	}

	return rankMatches(candidates, topK, filter, x.overFetch)
}

// Count returns the number of records in a collection.
func (x *ClickHouseVectorIndex) Count(ctx context.Context, col repository.Collection) (int, error) {
	stmt := fmt.Sprintf("SELECT count() FROM %s FINAL WHERE collection = ?", x.table)
	var n int
	if err := x.client.DB().QueryRowContext(ctx, stmt, string(col)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count collection: %w", err)
	}
	return n, nil
}

// Clear removes every record in a collection.
func (x *ClickHouseVectorIndex) Clear(ctx context.Context, col repository.Collection) error {
	stmt := fmt.Sprintf("ALTER TABLE %s DELETE WHERE collection = ?", x.table)
	if _, err := x.client.DB().ExecContext(ctx, stmt, string(col)); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	return nil
}

// rankMatches orders candidates by similarity, over-fetches before the
// severity post-filter so filtering does not starve the result set, and
// truncates to topK.
func rankMatches(candidates []scoredRecord, topK int, filter *repository.SearchFilter, overFetch int) []models.SimilarityMatch {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})

	fetch := topK * overFetch
	if fetch < len(candidates) {
		candidates = candidates[:fetch]
	}

	out := make([]models.SimilarityMatch, 0, topK)
	for _, c := range candidates {
		if filter != nil && filter.MinSeverity != "" {
			sev := models.Severity(c.metadata["severity"])
			if sev.Rank() < filter.MinSeverity.Rank() {
				continue
			}
		}
		out = append(out, models.SimilarityMatch{
			ID:          c.id,
			Description: c.description,
			Metadata:    c.metadata,
			Similarity:  c.similarity,
			Relevance:   models.RelevanceFromSimilarity(c.similarity),
		})
		if len(out) == topK {
			break
		}
	}
	return out
}

// cosineSimilarity clamps to [0,1]; anti-correlated vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
