package nlsql

import (
	"strings"
	"testing"

	"FinSight/internal/domain/models"
)

func TestSynthesizeTopStocks(t *testing.T) {
	s := NewSynthesizer()
	sql := s.Synthesize("Show me the top 5 stocks by return", models.IntentDataRetrieval)
	if sql == "" {
		t.Fatalf("expected template SQL")
	}
	if !strings.Contains(sql, "mart_asset_performance") {
		t.Fatalf("wrong table: %s", sql)
	}
	if !strings.Contains(sql, "ORDER BY total_return DESC") {
		t.Fatalf("missing ordering: %s", sql)
	}
	if !strings.Contains(sql, "LIMIT 5") {
		t.Fatalf("expected LIMIT 5: %s", sql)
	}
}

func TestSynthesizeCryptoDefault(t *testing.T) {
	s := NewSynthesizer()
	sql := s.Synthesize("List crypto prices", models.IntentDataRetrieval)
	if !strings.Contains(sql, "int_crypto_analysis") {
		t.Fatalf("wrong table: %s", sql)
	}
	if !strings.Contains(sql, "LIMIT 20") {
		t.Fatalf("expected default limit: %s", sql)
	}
}

func TestSynthesizeComparison(t *testing.T) {
	s := NewSynthesizer()
	sql := s.Synthesize("Compare Bitcoin and Ethereum performance", models.IntentComparison)
	if !strings.Contains(sql, "'btc', 'eth'") {
		t.Fatalf("expected both symbols: %s", sql)
	}
	if !strings.Contains(sql, "lower(asset_symbol) IN") {
		t.Fatalf("expected symbol filter: %s", sql)
	}
}

func TestSynthesizeTrendUsesWindow(t *testing.T) {
	s := NewSynthesizer()
	sql := s.Synthesize("Market trend for the last 90 days", models.IntentTrendAnalysis)
	if !strings.Contains(sql, "INTERVAL 90 DAY") {
		t.Fatalf("expected 90 day window: %s", sql)
	}
}

func TestSynthesizeTrendDefaultWindow(t *testing.T) {
	s := NewSynthesizer()
	sql := s.Synthesize("How is the market trending", models.IntentTrendAnalysis)
	if !strings.Contains(sql, "INTERVAL 30 DAY") {
		t.Fatalf("expected default 30 day window: %s", sql)
	}
}

// A question owned by the retrieval rule that none of its generators can
// serve yields no SQL, even though a later rule might have matched.
func TestSynthesizeRuleOwnership(t *testing.T) {
	s := NewSynthesizer()
	sql := s.Synthesize("Show me unusual patterns", models.IntentDataRetrieval)
	if sql != "" {
		t.Fatalf("expected no template, got: %s", sql)
	}
}

func TestSynthesizeNoMatch(t *testing.T) {
	s := NewSynthesizer()
	if sql := s.Synthesize("hello there", models.QueryIntent("unknown")); sql != "" {
		t.Fatalf("expected empty SQL, got: %s", sql)
	}
}

func TestExtractAssets(t *testing.T) {
	got := ExtractAssets("Compare Bitcoin and Ethereum performance")
	if len(got) != 2 || got[0] != "btc" || got[1] != "eth" {
		t.Fatalf("unexpected assets: %v", got)
	}
}

func TestExtractAssetsTickers(t *testing.T) {
	got := ExtractAssets("compare AAPL vs MSFT")
	if len(got) != 2 || got[0] != "aapl" || got[1] != "msft" {
		t.Fatalf("unexpected assets: %v", got)
	}
}

func TestExtractAssetsIgnoresLowercaseWords(t *testing.T) {
	got := ExtractAssets("compare stocks and bonds")
	if len(got) != 0 {
		t.Fatalf("expected no assets, got: %v", got)
	}
}

func TestExtractNumberDefault(t *testing.T) {
	if n := extractNumber("top stocks", 10); n != 10 {
		t.Fatalf("expected default 10, got %d", n)
	}
	if n := extractNumber("top 25 stocks", 10); n != 25 {
		t.Fatalf("expected 25, got %d", n)
	}
}
