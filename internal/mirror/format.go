package mirror

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"

	"github.com/atelier-ops/workshop-api/internal/schema"
)

// FormatValue renders a store value as its sheet cell text. Timestamps use
// the workshop's dd.MM.yyyy HH:mm:ss convention; NULL renders as an empty cell.
func FormatValue(col schema.Column, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format(schema.TimeLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(schema.TimeLayout)
	case []byte:
		return string(val)
	case string:
		if col.Kind == schema.KindDatetime && val != "" {
			if ts, err := time.Parse(time.RFC3339Nano, val); err == nil {
				return ts.Format(schema.TimeLayout)
			}
		}
		return val
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if col.Kind == schema.KindInteger {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// RowValues orders and formats a store row for the sheet, one cell per
// registry column.
func RowValues(table schema.Table, row map[string]interface{}) []interface{} {
	out := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		out[i] = FormatValue(col, row[col.Name])
	}
	return out
}

// SnapshotValues decodes a queued audit snapshot into ordered sheet cells.
func SnapshotValues(table schema.Table, snapshot json.RawMessage) ([]interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(string(snapshot)))
	decoder.UseNumber()
	row := map[string]interface{}{}
	if err := decoder.Decode(&row); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return RowValues(table, row), nil
}

// ParseCell converts one sheet cell back into a store value. An empty cell
// means NULL. Enum cells must match one of the registered values exactly.
func ParseCell(col schema.Column, cell string) (interface{}, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	switch col.Kind {
	case schema.KindInteger:
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("column %q expects an integer", col.Label))
		}
		return n, nil
	case schema.KindDatetime:
		if ts, err := time.Parse(schema.TimeLayout, cell); err == nil {
			return ts, nil
		}
		ts, err := time.Parse(time.RFC3339Nano, cell)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("column %q expects %s", col.Label, schema.TimeLayout))
		}
		return ts, nil
	case schema.KindEnum:
		for _, allowed := range col.Enum {
			if cell == allowed {
				return cell, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("column %q does not allow value %q", col.Label, cell))
	default:
		return cell, nil
	}
}
