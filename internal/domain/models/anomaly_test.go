package models

import (
	"strings"
	"testing"
)

func TestSeverityFromScore(t *testing.T) {
	cases := []struct {
		z    float64
		want Severity
	}{
		{5.1, SeverityCritical},
		{4.0, SeverityCritical},
		{3.5, SeverityHigh},
		{3.0, SeverityHigh},
		{2.7, SeverityMedium},
		{2.5, SeverityMedium},
		{2.0, SeverityLow},
		{0, SeverityLow},
		{-4.2, SeverityCritical},
		{-2.8, SeverityMedium},
	}
	for _, c := range cases {
		if got := SeverityFromScore(c.z); got != c.want {
			t.Fatalf("SeverityFromScore(%v) = %s, want %s", c.z, got, c.want)
		}
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	order := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%s should outrank %s", order[i], order[i-1])
		}
	}
	if Severity("bogus").Rank() != -1 {
		t.Fatalf("unknown severity should rank below low")
	}
}

func TestAnomalyDescribe(t *testing.T) {
	a := Anomaly{Symbol: "TSLA", DailyReturn: -0.0834, Score: -3.21}
	got := a.Describe()
	if !strings.Contains(got, "TSLA") {
		t.Fatalf("description should name the asset: %s", got)
	}
	if !strings.Contains(got, "-8.34%") {
		t.Fatalf("description should show the percent return: %s", got)
	}
	if !strings.Contains(got, "-3.21") {
		t.Fatalf("description should show the z-score: %s", got)
	}
}

func TestRelevanceFromSimilarity(t *testing.T) {
	cases := []struct {
		sim  float64
		want Relevance
	}{
		{0.95, RelevanceHigh},
		{0.81, RelevanceHigh},
		{0.8, RelevanceMedium},
		{0.61, RelevanceMedium},
		{0.6, RelevanceLow},
		{0.1, RelevanceLow},
	}
	for _, c := range cases {
		if got := RelevanceFromSimilarity(c.sim); got != c.want {
			t.Fatalf("RelevanceFromSimilarity(%v) = %s, want %s", c.sim, got, c.want)
		}
	}
}
