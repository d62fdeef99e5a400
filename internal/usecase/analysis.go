package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinSight/internal/anomaly"
	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/domain/service"
	"FinSight/internal/nlsql"
	"FinSight/pkg/logger"
)

// Analyzer is the orchestration layer over the query, anomaly, and
// similarity components. It never fails hard on AI outages: every AI
// input degrades to a rule-based equivalent.
type Analyzer struct {
	queries   *nlsql.Service
	anomalies *anomaly.Classifier
	store     repository.RowStore
	index     repository.VectorIndex
	embedder  service.Embedder
	sentiment service.SentimentScorer
	reasoner  service.Reasoner
	metrics   repository.Metrics
	log       *logger.Logger
}

// NewAnalyzer wires the analysis orchestrator.
func NewAnalyzer(
	queries *nlsql.Service,
	anomalies *anomaly.Classifier,
	store repository.RowStore,
	index repository.VectorIndex,
	embedder service.Embedder,
	sentiment service.SentimentScorer,
	reasoner service.Reasoner,
	metrics repository.Metrics,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		queries:   queries,
		anomalies: anomalies,
		store:     store,
		index:     index,
		embedder:  embedder,
		sentiment: sentiment,
		reasoner:  reasoner,
		metrics:   metrics,
		log:       log,
	}
}

// ScanAnomalies runs the trailing-window anomaly scan.
func (a *Analyzer) ScanAnomalies(ctx context.Context, days int) models.AnomalyReport {
	start := time.Now()
	report := a.anomalies.Scan(ctx, days)
	a.metrics.RecordLatency("anomaly_scan", time.Since(start).Seconds())
	return report
}

// Usage reports remote reasoner consumption.
func (a *Analyzer) Usage() models.UsageStats {
	return a.reasoner.Usage()
}

// MarketConditions summarises the latest market summary rows into an
// overall mood with per-class sentiment.
func (a *Analyzer) MarketConditions(ctx context.Context) models.MarketConditions {
	query := `SELECT date, asset_class, avg_return, return_volatility,
       market_regime, risk_sentiment
FROM mart_daily_market_summary
WHERE date = (SELECT MAX(date) FROM mart_daily_market_summary)
ORDER BY asset_class`

	rows, err := a.store.Execute(ctx, query, 50)
	if err != nil {
		a.log.Error("market conditions query failed", logger.Error(err))
		return models.MarketConditions{Success: false, Error: err.Error(), GeneratedAt: time.Now()}
	}
	if len(rows) == 0 {
		return models.MarketConditions{
			Success:     false,
			Error:       "no market data available",
			GeneratedAt: time.Now(),
		}
	}

	var sumReturn, sumVol float64
	positive := 0
	var lastSentiment models.SentimentResult
	for _, row := range rows {
		sumReturn += toFloat(row["avg_return"])
		sumVol += toFloat(row["return_volatility"])

		regime := toString(row["market_regime"])
		risk := toString(row["risk_sentiment"])
		text := fmt.Sprintf("Market regime is %s with risk sentiment %s", regime, risk)
		lastSentiment = a.sentiment.Score(ctx, text)
		if lastSentiment.Label == "positive" {
			positive++
		}
	}

	n := len(rows)
	avgReturn := sumReturn / float64(n)
	avgVol := sumVol / float64(n)
	ratio := float64(positive) / float64(n)

	mood := "neutral"
	switch {
	case float64(positive) > float64(n)/2:
		mood = "bullish"
	case float64(positive) < float64(n)/3:
		mood = "bearish"
	}

	summary := fmt.Sprintf("Market is %s: average return %.2f%%, volatility %.2f%% across %d asset classes",
		mood, avgReturn*100, avgVol*100, n)

	return models.MarketConditions{
		Success:       true,
		Mood:          mood,
		MoodScore:     ratio,
		AvgReturn:     avgReturn,
		AvgVolatility: avgVol,
		AdvanceRatio:  ratio,
		AssetsTracked: n,
		Summary:       summary,
		Sentiment:     lastSentiment,
		GeneratedAt:   time.Now(),
	}
}

// AssetPerformance analyses one asset's trailing performance with a risk
// grade and related historical patterns.
func (a *Analyzer) AssetPerformance(ctx context.Context, symbol string, days int) models.AssetPerformance {
	// Symbols are interpolated into the statement, so quotes must go.
	symbol = strings.Map(func(r rune) rune {
		if r == '\'' || r == '\\' || r == ';' {
			return -1
		}
		return r
	}, symbol)

	query := fmt.Sprintf(`SELECT asset_symbol, asset_name, asset_type, sector,
       total_return, annualized_return, volatility, sharpe_ratio, max_drawdown
FROM mart_asset_performance
WHERE lower(asset_symbol) = lower('%s')
LIMIT 1`, symbol)

	rows, err := a.store.Execute(ctx, query, 1)
	if err != nil {
		a.log.Error("asset performance query failed", logger.Error(err), logger.String("symbol", symbol))
		return models.AssetPerformance{Success: false, Symbol: symbol, Error: err.Error()}
	}
	if len(rows) == 0 {
		return models.AssetPerformance{
			Success: false,
			Symbol:  symbol,
			Error:   fmt.Sprintf("asset %s not found", symbol),
		}
	}

	row := rows[0]
	totalReturn := toFloat(row["total_return"])
	vol := toFloat(row["volatility"])

	perf := models.AssetPerformance{
		Success:        true,
		Symbol:         toString(row["asset_symbol"]),
		PeriodDays:     days,
		TotalReturn:    totalReturn,
		AvgDailyReturn: toFloat(row["annualized_return"]) / 252,
		Volatility:     vol,
		MaxDrawdown:    toFloat(row["max_drawdown"]),
		RiskLevel:      riskLevel(vol),
	}

	description := fmt.Sprintf("Asset with %s risk and %.2f%% return", perf.RiskLevel, totalReturn*100)
	if vec, err := a.embedder.Embed(ctx, description); err == nil {
		perf.RelatedPatterns = a.index.Search(ctx, repository.CollectionPatterns, vec, 3, nil)
	}

	if insight, ok := a.reasoner.ExplainPattern(ctx, description, fmt.Sprintf("volatility %.2f, sharpe %.2f",
		vol, toFloat(row["sharpe_ratio"]))); ok {
		perf.Insight = insight
	}
	return perf
}

// Insight answers a natural-language question and layers summary
// statistics, related patterns, and an explanation on top. limit caps
// the executed row count.
func (a *Analyzer) Insight(ctx context.Context, question string, limit int, useAI bool) models.InsightResult {
	result := a.queries.Process(ctx, question, limit, useAI)
	out := models.InsightResult{QueryResult: result}
	if !result.Success {
		return out
	}

	out.Summary = summarize(result.Rows)

	searchText := fmt.Sprintf("Analysis of %s showing patterns in financial data", question)
	if vec, err := a.embedder.Embed(ctx, searchText); err == nil {
		out.RelatedPatterns = a.index.Search(ctx, repository.CollectionPatterns, vec, 3, nil)
	}

	if useAI && result.RowCount > 0 {
		marketCtx := fmt.Sprintf("query returned %d rows", result.RowCount)
		if insight, ok := a.reasoner.ExplainPattern(ctx, question, marketCtx); ok {
			out.Insight = insight
			out.AIGenerated = true
			return out
		}
	}
	out.Insight = simpleInsight(result)
	return out
}

// Recommendations derives rule-based suggestions from current market
// conditions.
func (a *Analyzer) Recommendations(ctx context.Context, days int) models.RecommendationSet {
	conditions := a.MarketConditions(ctx)
	if !conditions.Success {
		return models.RecommendationSet{
			Success:     false,
			BasedOnDays: days,
			Error:       conditions.Error,
			GeneratedAt: time.Now(),
		}
	}

	var recs []models.Recommendation
	switch conditions.Mood {
	case "bearish":
		recs = append(recs,
			models.Recommendation{Kind: "defensive", Rationale: "Consider defensive positions in current bearish environment", Priority: "high"},
			models.Recommendation{Kind: "hedging", Rationale: "Review portfolio risk exposure and consider hedging strategies", Priority: "high"},
		)
	case "bullish":
		recs = append(recs,
			models.Recommendation{Kind: "growth", Rationale: "Favorable conditions for growth-oriented positions", Priority: "medium"},
			models.Recommendation{Kind: "caution", Rationale: "Monitor for overbought conditions in high-momentum assets", Priority: "medium"},
		)
	}
	if conditions.AvgVolatility > 0.3 {
		recs = append(recs, models.Recommendation{
			Kind:      "sizing",
			Rationale: "High volatility detected, consider reducing position sizes",
			Priority:  "high",
		})
	}
	recs = append(recs, models.Recommendation{
		Kind:      "diversification",
		Rationale: "Maintain diversification across asset classes",
		Priority:  "low",
	})

	return models.RecommendationSet{
		Success:         true,
		Recommendations: recs,
		BasedOnDays:     days,
		GeneratedAt:     time.Now(),
	}
}

func riskLevel(volatility float64) string {
	switch {
	case volatility > 0.5:
		return "high"
	case volatility > 0.3:
		return "medium"
	default:
		return "low"
	}
}

// summarize computes mean/median/min/max for every numeric column.
func summarize(rows []models.Row) *models.SummaryStats {
	if len(rows) == 0 {
		return nil
	}

	numeric := map[string][]float64{}
	for _, row := range rows {
		for col, v := range row {
			if f, ok := v.(float64); ok {
				numeric[col] = append(numeric[col], f)
			}
		}
	}
	if len(numeric) == 0 {
		return &models.SummaryStats{Count: len(rows), Statistics: map[string]models.ColumnStats{}}
	}

	stats := make(map[string]models.ColumnStats, len(numeric))
	for col, vals := range numeric {
		sort.Float64s(vals)
		var sum float64
		for _, v := range vals {
			sum += v
		}
		stats[col] = models.ColumnStats{
			Mean:   sum / float64(len(vals)),
			Median: median(vals),
			Min:    vals[0],
			Max:    vals[len(vals)-1],
		}
	}
	return &models.SummaryStats{Count: len(rows), Statistics: stats}
}

// median expects vals sorted.
func median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

func simpleInsight(result models.QueryResult) string {
	if result.RowCount == 0 {
		return "No data found matching your query criteria."
	}
	switch result.Intent {
	case models.IntentComparison:
		return fmt.Sprintf("Found %d items for comparison. Review the metrics to identify differences.", result.RowCount)
	case models.IntentAggregation:
		return fmt.Sprintf("Aggregated data across %d categories. Check the averages and totals.", result.RowCount)
	case models.IntentDataRetrieval:
		return fmt.Sprintf("Retrieved %d records matching your criteria.", result.RowCount)
	default:
		return fmt.Sprintf("Query returned %d results.", result.RowCount)
	}
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	default:
		return 0
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
