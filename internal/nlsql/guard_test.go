package nlsql

import (
	"strings"
	"testing"
)

func TestGuardAllowsSelect(t *testing.T) {
	g := NewGuard()
	queries := []string{
		"SELECT * FROM mart_asset_performance LIMIT 10",
		"select ticker, avg(daily_return) from int_stock_daily_analysis group by ticker",
		"SELECT name FROM t WHERE date >= today() - INTERVAL 7 DAY;",
		"SELECT 'semi;colon in string' FROM t",
	}
	for _, q := range queries {
		if err := g.Validate(q); err != nil {
			t.Fatalf("expected %q to pass, got: %v", q, err)
		}
	}
}

func TestGuardDeniedKeywords(t *testing.T) {
	g := NewGuard()
	for _, kw := range deniedKeywords {
		sql := "SELECT * FROM t; " + strings.ToUpper(kw) + " TABLE t"
		err := g.Validate(sql)
		if err == nil {
			t.Fatalf("expected %q to be rejected", sql)
		}
		if !strings.Contains(err.Error(), kw) {
			t.Fatalf("error should name the keyword %q: %v", kw, err)
		}
	}
}

func TestGuardKeywordWordBoundary(t *testing.T) {
	g := NewGuard()
	// "created_at" contains "create" but is a column name, not a verb.
	if err := g.Validate("SELECT created_at FROM t"); err != nil {
		t.Fatalf("column names containing keywords must pass: %v", err)
	}
}

func TestGuardRejectsNonSelect(t *testing.T) {
	g := NewGuard()
	if err := g.Validate("WITH x AS (SELECT 1) SELECT * FROM x"); err == nil {
		t.Fatalf("expected non-select prefix to be rejected")
	}
}

func TestGuardRejectsMalformed(t *testing.T) {
	g := NewGuard()
	bad := []string{
		"select",
		"SELECT count( FROM t",
		"SELECT 'unterminated FROM t",
		"SELECT 1; SELECT 2",
	}
	for _, q := range bad {
		if err := g.Validate(q); err == nil {
			t.Fatalf("expected %q to be rejected", q)
		}
	}
}
