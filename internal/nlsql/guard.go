package nlsql

import (
	"fmt"
	"regexp"
	"strings"
)

// deniedKeywords lists statement verbs that must never reach the warehouse.
var deniedKeywords = []string{
	"drop", "delete", "truncate", "insert", "update",
	"alter", "create", "grant", "revoke",
}

var deniedRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(deniedKeywords))
	for i, kw := range deniedKeywords {
		res[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return res
}()

// Guard screens generated SQL before execution. It is a defense-in-depth
// lexical filter; the warehouse session itself is read-only and remains
// the real trust boundary.
type Guard struct{}

// NewGuard returns a SQL guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Validate returns nil when the statement is an acceptable single SELECT.
func (g *Guard) Validate(sql string) error {
	lower := strings.ToLower(strings.TrimSpace(sql))

	for i, re := range deniedRes {
		if re.MatchString(lower) {
			return fmt.Errorf("dangerous keyword %q not allowed", deniedKeywords[i])
		}
	}

	if !strings.HasPrefix(lower, "select") {
		return fmt.Errorf("only SELECT queries are allowed")
	}

	if err := checkStatement(lower); err != nil {
		return fmt.Errorf("invalid SQL syntax: %w", err)
	}
	return nil
}

// checkStatement is a minimal lexical sanity pass: something must follow
// the select keyword, quotes and parentheses must balance, and only one
// statement may be present.
func checkStatement(lower string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(lower, "select"))
	if rest == "" {
		return fmt.Errorf("empty select")
	}

	depth := 0
	inString := false
	for i := 0; i < len(lower); i++ {
		ch := lower[i]
		switch {
		case ch == '\'':
			inString = !inString
		case inString:
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced parentheses")
			}
		case ch == ';':
			if strings.TrimSpace(lower[i+1:]) != "" {
				return fmt.Errorf("multiple statements")
			}
		}
	}
	if inString {
		return fmt.Errorf("unterminated string literal")
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced parentheses")
	}
	return nil
}
