package anomaly

import (
	"context"
	"fmt"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/domain/service"
	"FinSight/pkg/logger"
	"FinSight/pkg/util"
)

const (
	scanRowCap    = 50
	enrichTopN    = 10
	enrichMatches = 3
)

// Classifier scans the warehouse anomaly mart over a trailing window,
// grades each hit, enriches the worst offenders with similar historical
// patterns, and fans high-grade alerts out to subscribers.
type Classifier struct {
	store     repository.RowStore
	index     repository.VectorIndex
	embedder  service.Embedder
	publisher repository.AlertPublisher
	metrics   repository.Metrics
	log       *logger.Logger
	threshold float64
}

// NewClassifier builds the anomaly scan pipeline. publisher may be nil
// when alert fan-out is disabled.
func NewClassifier(
	store repository.RowStore,
	index repository.VectorIndex,
	embedder service.Embedder,
	publisher repository.AlertPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
	threshold float64,
) *Classifier {
	if threshold <= 0 {
		threshold = 2.0
	}
	return &Classifier{
		store:     store,
		index:     index,
		embedder:  embedder,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		threshold: threshold,
	}
}

// Scan detects anomalies in the trailing window. Finding nothing is a
// successful outcome, not an error.
func (c *Classifier) Scan(ctx context.Context, days int) models.AnomalyReport {
	if days <= 0 {
		days = 7
	}
	c.log.Info("scanning for anomalies", logger.Int("days", days))

	query := fmt.Sprintf(`SELECT asset_name, asset_id, date, daily_return, anomaly_type, anomaly_score
FROM analytics_market_anomalies
WHERE date >= today() - INTERVAL %d DAY
  AND abs(anomaly_score) > %g
ORDER BY date DESC, abs(anomaly_score) DESC
LIMIT %d`, days, c.threshold, scanRowCap)

	rows, err := c.store.Execute(ctx, query, scanRowCap)
	if err != nil {
		c.log.Error("anomaly scan failed", logger.Error(err))
		return models.AnomalyReport{
			Success:     false,
			PeriodDays:  days,
			Error:       err.Error(),
			GeneratedAt: time.Now(),
		}
	}

	if len(rows) == 0 {
		return models.AnomalyReport{
			Success:     true,
			PeriodDays:  days,
			BySeverity:  map[models.Severity]int{},
			Message:     fmt.Sprintf("no significant anomalies detected in last %d days", days),
			GeneratedAt: time.Now(),
		}
	}

	classified := classify(rows)

	bySeverity := map[models.Severity]int{}
	for _, a := range classified {
		bySeverity[a.Severity]++
	}
	for sev, n := range bySeverity {
		c.metrics.RecordAnomalies(string(sev), n)
	}

	top := classified
	if len(top) > enrichTopN {
		top = top[:enrichTopN]
	}
	enriched := c.enrich(ctx, top)

	c.broadcast(ctx, classified)

	return models.AnomalyReport{
		Success:        true,
		AnomaliesFound: len(rows),
		PeriodDays:     days,
		BySeverity:     bySeverity,
		TopAnomalies:   enriched,
		AllAnomalies:   classified,
		GeneratedAt:    time.Now(),
	}
}

// classify converts raw mart rows into graded anomalies, preserving the
// store's ordering.
func classify(rows []models.Row) []models.Anomaly {
	out := make([]models.Anomaly, 0, len(rows))
	for _, row := range rows {
		// Scores are kept as absolute z-distances; direction lives in the
		// daily return.
		score := abs(asFloat(row["anomaly_score"]))
		ret := asFloat(row["daily_return"])
		if score == 0 {
			// Mart rows without a score fall back to a rough estimate
			// from the raw return.
			score = abs(ret) * 100
		}

		a := models.Anomaly{
			Symbol:      asString(row["asset_name"]),
			Date:        util.DateOnly(asString(row["date"])),
			DailyReturn: ret,
			Score:       score,
			Severity:    models.SeverityFromScore(score),
		}
		a.Description = a.Describe()
		out = append(out, a)
	}
	return out
}

// enrich attaches similar historical events to each anomaly. Enrichment
// is best effort: an embedder or index failure leaves the anomaly bare.
func (c *Classifier) enrich(ctx context.Context, anomalies []models.Anomaly) []models.Anomaly {
	out := make([]models.Anomaly, len(anomalies))
	copy(out, anomalies)

	for i := range out {
		vec, err := c.embedder.Embed(ctx, out[i].Description)
		if err != nil {
			c.log.Warn("anomaly enrichment skipped", logger.Error(err), logger.String("symbol", out[i].Symbol))
			continue
		}
		out[i].SimilarEvents = c.index.Search(ctx, repository.CollectionAnomalies, vec, enrichMatches,
			&repository.SearchFilter{MinSeverity: models.SeverityMedium})
	}
	return out
}

// broadcast publishes high and critical anomalies. Publish failures are
// logged inside the publisher and do not affect the report.
func (c *Classifier) broadcast(ctx context.Context, anomalies []models.Anomaly) {
	if c.publisher == nil {
		return
	}
	for _, a := range anomalies {
		if a.Severity.Rank() < models.SeverityHigh.Rank() {
			continue
		}
		alert := models.AnomalyAlert{
			Symbol:      a.Symbol,
			Date:        a.Date,
			Score:       a.Score,
			Severity:    a.Severity,
			Description: a.Description,
			EmittedAt:   time.Now(),
		}
		if err := c.publisher.PublishAlert(ctx, alert); err != nil {
			c.log.Warn("anomaly alert dropped", logger.Error(err), logger.String("symbol", a.Symbol))
		}
	}
}

func asFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return 0
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
