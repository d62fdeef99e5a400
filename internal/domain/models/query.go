package models

import "time"

// QueryIntent classifies what a natural-language question is asking for.
type QueryIntent string

const (
	IntentDataRetrieval    QueryIntent = "data_retrieval"
	IntentAggregation      QueryIntent = "aggregation"
	IntentComparison       QueryIntent = "comparison"
	IntentTrendAnalysis    QueryIntent = "trend_analysis"
	IntentAnomalyDetection QueryIntent = "anomaly_detection"
)

// Intents lists every supported intent, in classifier label order.
func Intents() []QueryIntent {
	return []QueryIntent{
		IntentDataRetrieval,
		IntentAggregation,
		IntentComparison,
		IntentTrendAnalysis,
		IntentAnomalyDetection,
	}
}

// GenerationMethod records how the SQL for a query was produced.
type GenerationMethod string

const (
	MethodTemplate          GenerationMethod = "template"
	MethodAIGenerated       GenerationMethod = "ai_generated"
	MethodAttemptedTemplate GenerationMethod = "attempted_template"
)

// Row is a single result row keyed by column name.
type Row map[string]interface{}

// IntentResult is the classifier verdict for a question. AllIntents
// carries the full label/score distribution for diagnostics.
type IntentResult struct {
	Intent     QueryIntent        `json:"intent"`
	Confidence float64            `json:"confidence"`
	AllIntents map[string]float64 `json:"all_intents,omitempty"`
}

// QueryResult is the full outcome of a natural-language query.
type QueryResult struct {
	Success        bool             `json:"success"`
	Question       string           `json:"question"`
	SQL            string           `json:"sql,omitempty"`
	Rows           []Row            `json:"rows"`
	RowCount       int              `json:"row_count"`
	Intent         QueryIntent      `json:"intent,omitempty"`
	Confidence     float64          `json:"confidence"`
	Method         GenerationMethod `json:"method,omitempty"`
	ProcessingTime time.Duration    `json:"processing_time_ms"`
	Error          string           `json:"error,omitempty"`
	Suggestion     string           `json:"suggestion,omitempty"`
}

// UsageStats reports remote reasoner consumption against its caps.
type UsageStats struct {
	RequestsToday  int     `json:"requests_today"`
	RequestsMonth  int     `json:"requests_month"`
	DailyLimit     int     `json:"daily_limit"`
	MonthlyLimit   int     `json:"monthly_limit"`
	DailyRemaining int     `json:"daily_remaining"`
	MonthRemaining int     `json:"month_remaining"`
	DailyUsedPct   float64 `json:"daily_used_pct"`
	Available      bool    `json:"available"`
}
