package nlsql

import (
	"fmt"
	"regexp"
	"strings"

	"FinSight/internal/domain/models"
)

var (
	numberRe = regexp.MustCompile(`\b\d+\b`)
	tickerRe = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
)

// assetAliases maps common asset names to their symbols, in match order.
var assetAliases = []struct {
	name   string
	symbol string
}{
	{"bitcoin", "btc"},
	{"ethereum", "eth"},
	{"apple", "aapl"},
	{"microsoft", "msft"},
	{"google", "googl"},
	{"amazon", "amzn"},
	{"tesla", "tsla"},
}

// rule is one template generator. Rules are evaluated in order; the first
// rule whose match fires owns the question, even when its generator
// produces no SQL.
type rule struct {
	name     string
	match    func(intent models.QueryIntent, q string) bool
	generate func(question, q string) string
}

// Synthesizer produces SQL for well-understood question shapes without
// touching the remote model.
type Synthesizer struct {
	rules []rule
}

// NewSynthesizer builds the template rule list.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{rules: []rule{
		{
			name: "retrieval",
			match: func(intent models.QueryIntent, q string) bool {
				return intent == models.IntentDataRetrieval ||
					strings.Contains(q, "show") || strings.Contains(q, "list") || strings.Contains(q, "get")
			},
			generate: generateRetrieval,
		},
		{
			name: "aggregation",
			match: func(intent models.QueryIntent, q string) bool {
				return intent == models.IntentAggregation ||
					strings.Contains(q, "average") || strings.Contains(q, "avg") || strings.Contains(q, "mean")
			},
			generate: generateAggregation,
		},
		{
			name: "comparison",
			match: func(intent models.QueryIntent, q string) bool {
				return intent == models.IntentComparison ||
					strings.Contains(q, "compare") || strings.Contains(q, "vs") || strings.Contains(q, "versus")
			},
			generate: generateComparison,
		},
		{
			name: "trend",
			match: func(intent models.QueryIntent, q string) bool {
				return intent == models.IntentTrendAnalysis ||
					strings.Contains(q, "trend") || strings.Contains(q, "over time")
			},
			generate: generateTrend,
		},
		{
			name: "anomaly",
			match: func(intent models.QueryIntent, q string) bool {
				return intent == models.IntentAnomalyDetection ||
					strings.Contains(q, "anomaly") || strings.Contains(q, "unusual") || strings.Contains(q, "outlier")
			},
			generate: generateAnomaly,
		},
	}}
}

// Synthesize returns template SQL for the question, or "" when no template
// applies.
func (s *Synthesizer) Synthesize(question string, intent models.QueryIntent) string {
	q := strings.ToLower(question)
	for _, r := range s.rules {
		if r.match(intent, q) {
			return r.generate(question, q)
		}
	}
	return ""
}

func generateRetrieval(question, q string) string {
	switch {
	case strings.Contains(q, "stock"):
		if strings.Contains(q, "top") || strings.Contains(q, "best") || strings.Contains(q, "highest") {
			limit := extractNumber(question, 10)
			switch {
			case strings.Contains(q, "return") || strings.Contains(q, "performance"):
				return fmt.Sprintf(`SELECT asset_symbol, asset_name, total_return, sharpe_ratio, sector
FROM mart_asset_performance
WHERE asset_type = 'stock'
ORDER BY total_return DESC
LIMIT %d`, limit)
			case strings.Contains(q, "volatil"):
				return fmt.Sprintf(`SELECT ticker, company_name, volatility_20d, daily_return, sector
FROM int_stock_daily_analysis
WHERE date = (SELECT MAX(date) FROM int_stock_daily_analysis)
ORDER BY volatility_20d DESC
LIMIT %d`, limit)
			case strings.Contains(q, "volume"):
				return fmt.Sprintf(`SELECT ticker, company_name, volume, close_price, daily_return
FROM int_stock_daily_analysis
WHERE date = (SELECT MAX(date) FROM int_stock_daily_analysis)
ORDER BY volume DESC
LIMIT %d`, limit)
			}
			return ""
		}
		return `SELECT ticker, company_name, close_price, daily_return, sector
FROM int_stock_daily_analysis
WHERE date = (SELECT MAX(date) FROM int_stock_daily_analysis)
ORDER BY ticker
LIMIT 20`

	case strings.Contains(q, "crypto") || strings.Contains(q, "bitcoin") || strings.Contains(q, "ethereum"):
		if strings.Contains(q, "top") || strings.Contains(q, "best") {
			limit := extractNumber(question, 10)
			return fmt.Sprintf(`SELECT symbol, name, price_usd, daily_return, volume_24h
FROM int_crypto_analysis
WHERE date = (SELECT MAX(date) FROM int_crypto_analysis)
ORDER BY daily_return DESC
LIMIT %d`, limit)
		}
		return `SELECT symbol, name, price_usd, daily_return, ma_7d, ma_30d
FROM int_crypto_analysis
WHERE date = (SELECT MAX(date) FROM int_crypto_analysis)
ORDER BY symbol
LIMIT 20`
	}
	return ""
}

func generateAggregation(_, q string) string {
	switch {
	case strings.Contains(q, "return"):
		if strings.Contains(q, "sector") {
			return `SELECT sector,
       AVG(total_return) AS avg_return,
       AVG(volatility) AS avg_volatility,
       COUNT(*) AS num_assets
FROM mart_asset_performance
WHERE asset_type = 'stock' AND sector IS NOT NULL
GROUP BY sector
ORDER BY avg_return DESC`
		}
		return `SELECT asset_type,
       AVG(total_return) AS avg_return,
       AVG(volatility) AS avg_volatility,
       COUNT(*) AS num_assets
FROM mart_asset_performance
GROUP BY asset_type
ORDER BY avg_return DESC`

	case strings.Contains(q, "volatil"):
		if strings.Contains(q, "sector") {
			return `SELECT sector,
       AVG(volatility) AS avg_volatility,
       MAX(volatility) AS max_volatility,
       MIN(volatility) AS min_volatility
FROM mart_asset_performance
WHERE asset_type = 'stock' AND sector IS NOT NULL
GROUP BY sector
ORDER BY avg_volatility DESC`
		}
	}
	return ""
}

func generateComparison(question, _ string) string {
	assets := ExtractAssets(question)
	if len(assets) >= 2 {
		list := "'" + strings.Join(assets, "', '") + "'"
		return fmt.Sprintf(`SELECT asset_symbol, asset_name, total_return,
       annualized_return, sharpe_ratio, volatility
FROM mart_asset_performance
WHERE lower(asset_symbol) IN (%s)
   OR lower(asset_name) IN (%s)
ORDER BY total_return DESC`, list, list)
	}
	return `SELECT asset_type,
       AVG(total_return) AS avg_return,
       AVG(sharpe_ratio) AS avg_sharpe,
       AVG(volatility) AS avg_volatility
FROM mart_asset_performance
GROUP BY asset_type
ORDER BY avg_return DESC`
}

func generateTrend(question, q string) string {
	if strings.Contains(q, "market") {
		days := extractNumber(question, 30)
		return fmt.Sprintf(`SELECT date, asset_class, avg_return,
       return_volatility, market_regime
FROM mart_daily_market_summary
WHERE date >= today() - INTERVAL %d DAY
ORDER BY date DESC, asset_class`, days)
	}
	return ""
}

func generateAnomaly(_, _ string) string {
	return `SELECT asset_name, date, daily_return, volume,
       return_z_score, anomaly_type
FROM analytics_market_anomalies
WHERE abs(return_z_score) > 2
ORDER BY date DESC, abs(return_z_score) DESC
LIMIT 20`
}

// extractNumber pulls the first integer out of the question, e.g.
// "top 5 stocks" yields 5.
func extractNumber(text string, def int) int {
	m := numberRe.FindString(text)
	if m == "" {
		return def
	}
	var n int
	fmt.Sscanf(m, "%d", &n)
	return n
}

// ExtractAssets resolves asset mentions to lowercase symbols. Known names
// are matched case-insensitively; explicit tickers must already be
// uppercase in the question so that ordinary words do not read as symbols.
func ExtractAssets(question string) []string {
	q := strings.ToLower(question)

	var out []string
	seen := make(map[string]bool)
	add := func(sym string) {
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}

	for _, a := range assetAliases {
		if strings.Contains(q, a.name) {
			add(a.symbol)
		}
	}
	for _, t := range tickerRe.FindAllString(question, -1) {
		add(strings.ToLower(t))
	}
	return out
}
