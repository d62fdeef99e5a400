package reasoner

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	sqlFenceRe  = regexp.MustCompile("```sql\n?|```\n?")
	sqlLabelRe  = regexp.MustCompile(`(?i)^(SQL Query:|Query:)\s*`)
	explLabelRe = regexp.MustCompile(`(?i)^(Explanation:|Analysis:|Summary:)\s*`)
)

func sqlPrompt(question, schemaContext string) string {
	return fmt.Sprintf(`You are a ClickHouse expert for a financial analytics database.
Convert the natural language query to a valid ClickHouse SQL query.

DATABASE SCHEMA:
%s

QUERY: %s

RULES:
- Return ONLY the SQL query, no explanations
- Use proper ClickHouse syntax
- Include appropriate JOINs if needed
- Add LIMIT clause to prevent large results
- Use meaningful aliases

SQL Query:`, schemaContext, question)
}

func explainPrompt(description, marketContext string) string {
	return fmt.Sprintf(`You are a financial analyst explaining market patterns to investors.

PATTERN:
%s

MARKET CONTEXT:
%s

Provide a clear, concise explanation (2-3 sentences) that:
- Identifies what happened
- Explains why it matters
- Suggests what to watch for

Explanation:`, description, marketContext)
}

// CleanSQL strips markdown fences, label prefixes, and trailing semicolons
// from model output. The executor owns the terminating LIMIT and semicolon.
func CleanSQL(sql string) string {
	sql = sqlFenceRe.ReplaceAllString(sql, "")
	sql = strings.TrimSpace(sql)
	sql = sqlLabelRe.ReplaceAllString(sql, "")
	sql = strings.TrimSpace(sql)
	return strings.TrimRight(sql, ";")
}

// CleanExplanation strips label prefixes and collapses whitespace.
func CleanExplanation(text string) string {
	text = explLabelRe.ReplaceAllString(strings.TrimSpace(text), "")
	return strings.Join(strings.Fields(text), " ")
}
