package catalog

import (
	"fmt"
	"strings"
)

// Column documents a single warehouse column.
type Column struct {
	Name        string
	Description string
}

// Table documents a warehouse table for SQL generation.
type Table struct {
	Name          string
	Description   string
	Columns       []Column
	CommonFilters []string
	CommonSorts   []string
}

type keywordRule struct {
	keyword string
	tables  []string
}

// Catalog holds the warehouse schema the query layer is allowed to see.
// The table set is static: the warehouse is an external collaborator and
// its dbt models change on a slower cadence than this service.
type Catalog struct {
	tables        map[string]Table
	order         []string
	keywordRules  []keywordRule
	defaultTables []string
}

// Option customises catalog construction.
type Option func(*Catalog)

// WithKeywordRule appends an extra keyword-to-tables mapping. Rules are
// evaluated in registration order.
func WithKeywordRule(keyword string, tables ...string) Option {
	return func(c *Catalog) {
		c.keywordRules = append(c.keywordRules, keywordRule{keyword: keyword, tables: tables})
	}
}

// New builds the warehouse catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		tables: make(map[string]Table),
		keywordRules: []keywordRule{
			{"stock", []string{"int_stock_daily_analysis", "mart_asset_performance"}},
			{"crypto", []string{"int_crypto_analysis", "mart_asset_performance"}},
			{"economic", []string{"int_economic_analysis"}},
			{"market", []string{"mart_daily_market_summary"}},
			{"correlation", []string{"analytics_cross_asset_correlations"}},
			{"anomaly", []string{"analytics_market_anomalies"}},
			{"performance", []string{"mart_asset_performance"}},
			{"volatility", []string{"int_stock_daily_analysis", "int_crypto_analysis"}},
			{"return", []string{"mart_asset_performance", "int_stock_daily_analysis"}},
		},
		defaultTables: []string{
			"mart_asset_performance",
			"int_stock_daily_analysis",
			"mart_daily_market_summary",
		},
	}

	for _, t := range warehouseTables() {
		c.tables[t.Name] = t
		c.order = append(c.order, t.Name)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllTables returns every table name in catalog order.
func (c *Catalog) AllTables() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// TableDescription renders a table for inclusion in a generation prompt.
func (c *Catalog) TableDescription(name string) string {
	t, ok := c.tables[name]
	if !ok {
		return fmt.Sprintf("Table %s not found", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", t.Name)
	fmt.Fprintf(&b, "Description: %s\n", t.Description)
	b.WriteString("Columns:\n")
	for _, col := range t.Columns {
		fmt.Fprintf(&b, "  - %s: %s\n", col.Name, col.Description)
	}
	if len(t.CommonFilters) > 0 {
		fmt.Fprintf(&b, "Common filters: %s\n", strings.Join(t.CommonFilters, ", "))
	}
	if len(t.CommonSorts) > 0 {
		fmt.Fprintf(&b, "Common sorts: %s\n", strings.Join(t.CommonSorts, ", "))
	}
	return b.String()
}

// RelevantTables picks tables whose keywords appear in the question,
// deduplicated in rule order. Falls back to the default set when no
// keyword matches.
func (c *Catalog) RelevantTables(question string) []string {
	q := strings.ToLower(question)

	var out []string
	seen := make(map[string]bool)
	for _, rule := range c.keywordRules {
		if !strings.Contains(q, rule.keyword) {
			continue
		}
		for _, t := range rule.tables {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	if len(out) == 0 {
		out = append(out, c.defaultTables...)
	}
	return out
}

// SchemaForGeneration renders the top relevant tables as prompt context.
func (c *Catalog) SchemaForGeneration(question string) string {
	relevant := c.RelevantTables(question)
	if len(relevant) > 3 {
		relevant = relevant[:3]
	}

	var b strings.Builder
	b.WriteString("Available ClickHouse tables:\n\n")
	for _, name := range relevant {
		b.WriteString(c.TableDescription(name))
		b.WriteString("\n")
	}
	b.WriteString("\nNotes:\n")
	b.WriteString("- Use ClickHouse SQL syntax\n")
	b.WriteString("- Always include a LIMIT clause (max 100 rows)\n")
	b.WriteString("- Use meaningful column aliases\n")
	b.WriteString("- Date format: 'YYYY-MM-DD'\n")
	return b.String()
}

func warehouseTables() []Table {
	return []Table{
		{
			Name:        "int_stock_daily_analysis",
			Description: "Daily stock analysis with technical indicators",
			Columns: []Column{
				{"ticker", "Stock ticker"},
				{"date", "Trading date"},
				{"close_price", "Closing price"},
				{"volume", "Trading volume"},
				{"daily_return", "Daily percentage return"},
				{"sma_short", "Short-term moving average (20 days)"},
				{"sma_long", "Long-term moving average (50 days)"},
				{"rsi_14d", "Relative Strength Index (14 days)"},
				{"volatility_20d", "20-day volatility"},
				{"company_name", "Company name"},
				{"sector", "Business sector"},
				{"market_cap_category", "Market cap size (Large/Mid/Small)"},
			},
			CommonFilters: []string{"sector", "market_cap_category"},
			CommonSorts:   []string{"daily_return", "volatility_20d", "volume"},
		},
		{
			Name:        "int_economic_analysis",
			Description: "Economic indicators with calculations",
			Columns: []Column{
				{"series_id", "FRED series ID"},
				{"date", "Date"},
				{"value", "Indicator value"},
				{"percentage_change", "Period-over-period change"},
				{"year_over_year_change", "Year-over-year change"},
				{"series_title", "Indicator name"},
				{"indicator_category", "Category (GDP, Inflation, Employment, etc.)"},
				{"units", "Units"},
			},
			CommonFilters: []string{"indicator_category"},
			CommonSorts:   []string{"date", "percentage_change"},
		},
		{
			Name:        "int_crypto_analysis",
			Description: "Cryptocurrency analysis with metrics",
			Columns: []Column{
				{"symbol", "Crypto symbol"},
				{"name", "Name"},
				{"date", "Date"},
				{"price_usd", "Price in USD"},
				{"volume_24h", "24-hour volume"},
				{"daily_return", "Daily return"},
				{"ma_7d", "7-day moving average"},
				{"ma_30d", "30-day moving average"},
				{"volatility_30d", "30-day volatility"},
				{"crypto_category", "Category (DeFi, Layer1, etc.)"},
			},
			CommonFilters: []string{"crypto_category"},
			CommonSorts:   []string{"daily_return", "volume_24h", "price_usd"},
		},
		{
			Name:        "mart_daily_market_summary",
			Description: "Daily market summary by asset class",
			Columns: []Column{
				{"date", "Date"},
				{"asset_class", "Asset class (stock/crypto/economic)"},
				{"avg_return", "Average return"},
				{"return_volatility", "Return volatility"},
				{"total_volume", "Total trading volume"},
				{"market_regime", "Market regime (bull/bear/neutral)"},
				{"risk_sentiment", "Risk sentiment score"},
			},
			CommonFilters: []string{"asset_class", "market_regime"},
			CommonSorts:   []string{"date", "avg_return"},
		},
		{
			Name:        "mart_asset_performance",
			Description: "Asset performance metrics",
			Columns: []Column{
				{"asset_symbol", "Asset symbol/ticker"},
				{"asset_type", "Type (stock/crypto)"},
				{"asset_name", "Asset name"},
				{"total_return", "Total return"},
				{"annualized_return", "Annualized return"},
				{"volatility", "Volatility"},
				{"sharpe_ratio", "Sharpe ratio"},
				{"max_drawdown", "Maximum drawdown"},
				{"beta", "Market beta"},
				{"sector", "Sector (for stocks)"},
				{"performance_category", "Performance tier"},
			},
			CommonFilters: []string{"asset_type", "sector", "performance_category"},
			CommonSorts:   []string{"total_return", "sharpe_ratio", "volatility"},
		},
		{
			Name:        "analytics_cross_asset_correlations",
			Description: "Cross-asset correlation matrix",
			Columns: []Column{
				{"asset_1", "First asset"},
				{"asset_2", "Second asset"},
				{"correlation_coefficient", "Correlation (-1 to 1)"},
				{"relationship_type", "Type (positive/negative/none)"},
				{"correlation_strength", "Strength (strong/moderate/weak)"},
			},
			CommonFilters: []string{"relationship_type", "correlation_strength"},
			CommonSorts:   []string{"correlation_coefficient"},
		},
		{
			Name:        "analytics_market_anomalies",
			Description: "Detected market anomalies",
			Columns: []Column{
				{"asset_id", "Asset identifier"},
				{"asset_name", "Asset name"},
				{"date", "Date"},
				{"daily_return", "Return"},
				{"volume", "Volume"},
				{"return_z_score", "Z-score for return"},
				{"volume_z_score", "Z-score for volume"},
				{"anomaly_type", "Type of anomaly"},
			},
			CommonFilters: []string{"anomaly_type"},
			CommonSorts:   []string{"date", "return_z_score"},
		},
	}
}
