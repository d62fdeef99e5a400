package models

import "time"

// SentimentResult is a sentiment verdict for a piece of text.
type SentimentResult struct {
	Label      string    `json:"label"`
	Score      float64   `json:"score"`
	Confidence Relevance `json:"confidence"`
}

// NeutralSentiment is the degraded-mode verdict when scoring fails.
func NeutralSentiment() SentimentResult {
	return SentimentResult{Label: "neutral", Score: 0.5, Confidence: RelevanceLow}
}

// MarketConditions summarises the current mood of the market.
type MarketConditions struct {
	Success       bool            `json:"success"`
	Mood          string          `json:"mood"`
	MoodScore     float64         `json:"mood_score"`
	AvgReturn     float64         `json:"avg_return"`
	AvgVolatility float64         `json:"avg_volatility"`
	AdvanceRatio  float64         `json:"advance_ratio"`
	AssetsTracked int             `json:"assets_tracked"`
	Summary       string          `json:"summary"`
	Sentiment     SentimentResult `json:"sentiment"`
	Error         string          `json:"error,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// AssetPerformance is a single asset's trailing performance with risk grade.
type AssetPerformance struct {
	Success         bool              `json:"success"`
	Symbol          string            `json:"symbol"`
	PeriodDays      int               `json:"period_days"`
	TotalReturn     float64           `json:"total_return"`
	AvgDailyReturn  float64           `json:"avg_daily_return"`
	Volatility      float64           `json:"volatility"`
	MaxDrawdown     float64           `json:"max_drawdown"`
	RiskLevel       string            `json:"risk_level"`
	Insight         string            `json:"insight,omitempty"`
	RelatedPatterns []SimilarityMatch `json:"related_patterns,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// ColumnStats are summary statistics for one numeric result column.
type ColumnStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SummaryStats summarises the numeric columns of a result set.
type SummaryStats struct {
	Count      int                    `json:"count"`
	Statistics map[string]ColumnStats `json:"statistics"`
}

// InsightResult is a query result enriched with statistics, related
// patterns, and a human-readable insight.
type InsightResult struct {
	QueryResult
	Summary         *SummaryStats     `json:"summary_statistics,omitempty"`
	RelatedPatterns []SimilarityMatch `json:"related_patterns,omitempty"`
	Insight         string            `json:"insight,omitempty"`
	AIGenerated     bool              `json:"ai_generated"`
}

// Recommendation is a single rule-derived suggestion.
type Recommendation struct {
	Kind      string `json:"kind"`
	Symbol    string `json:"symbol,omitempty"`
	Rationale string `json:"rationale"`
	Priority  string `json:"priority"`
}

// RecommendationSet is the full rule engine output.
type RecommendationSet struct {
	Success         bool             `json:"success"`
	Recommendations []Recommendation `json:"recommendations"`
	BasedOnDays     int              `json:"based_on_days"`
	Error           string           `json:"error,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
