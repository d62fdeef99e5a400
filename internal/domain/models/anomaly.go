package models

import (
	"fmt"
	"math"
	"time"
)

// Severity grades an anomaly by how far its score sits from the mean.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordinal position of the severity, low first.
// Unknown severities rank below low.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// SeverityFromScore maps an absolute z-score to a severity grade.
func SeverityFromScore(z float64) Severity {
	abs := math.Abs(z)
	switch {
	case abs >= 4.0:
		return SeverityCritical
	case abs >= 3.0:
		return SeverityHigh
	case abs >= 2.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Anomaly is a single out-of-band daily return for an asset.
type Anomaly struct {
	Symbol        string            `json:"symbol"`
	Date          string            `json:"date"`
	DailyReturn   float64           `json:"daily_return"`
	Score         float64           `json:"score"`
	Severity      Severity          `json:"severity"`
	Description   string            `json:"description"`
	SimilarEvents []SimilarityMatch `json:"similar_events,omitempty"`
}

// Describe renders the canonical one-line description of the anomaly.
func (a Anomaly) Describe() string {
	return fmt.Sprintf("%s experienced %.2f%% return with z-score %.2f",
		a.Symbol, a.DailyReturn*100, a.Score)
}

// AnomalyReport is the outcome of a trailing-window anomaly scan.
type AnomalyReport struct {
	Success        bool             `json:"success"`
	AnomaliesFound int              `json:"anomalies_found"`
	PeriodDays     int              `json:"period_days"`
	BySeverity     map[Severity]int `json:"by_severity"`
	TopAnomalies   []Anomaly        `json:"top_anomalies"`
	AllAnomalies   []Anomaly        `json:"all_anomalies"`
	Message        string           `json:"message,omitempty"`
	Error          string           `json:"error,omitempty"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// AnomalyAlert is the payload fanned out to alert subscribers.
type AnomalyAlert struct {
	Symbol      string    `json:"symbol"`
	Date        string    `json:"date"`
	Score       float64   `json:"score"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	EmittedAt   time.Time `json:"emitted_at"`
}
