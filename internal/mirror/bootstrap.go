package mirror

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/schema"
)

// Sheet-wide validation bounds, matching what the workshop managers agreed
// to tolerate in hand-edited cells.
const (
	integerLowerBound = "0"
	integerUpperBound = "20000000000"
	datetimeBound     = "=TODAY()+365"
	datetimePattern   = "dd.mm.yyyy hh:mm:ss"
)

// Bootstrap makes sure every mirrored table has its sheet, header row,
// column validation and date formatting in place. Safe to run on every
// startup; the bridge treats existing sheets as a no-op.
func Bootstrap(ctx context.Context, api API, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, table := range schema.Tables {
		if err := bootstrapTable(ctx, api, table); err != nil {
			return fmt.Errorf("bootstrap sheet %s: %w", table.Sheet, err)
		}
		logger.Info("sheet ready", zap.String("sheet", table.Sheet))
	}
	return nil
}

func bootstrapTable(ctx context.Context, api API, table schema.Table) error {
	if err := api.EnsureSheet(ctx, table.Sheet); err != nil {
		return err
	}
	if err := api.SetHeader(ctx, table.Sheet, table.Headers()); err != nil {
		return err
	}

	rules := make([]ValidationRule, 0, len(table.Columns))
	var datetimeColumns []int
	for i, col := range table.Columns {
		switch col.Kind {
		case schema.KindInteger:
			rules = append(rules, ValidationRule{
				ColumnIndex: i,
				Type:        RuleNumberBetween,
				Values:      []string{integerLowerBound, integerUpperBound},
			})
		case schema.KindDatetime:
			rules = append(rules, ValidationRule{
				ColumnIndex: i,
				Type:        RuleDateBefore,
				Values:      []string{datetimeBound},
			})
			datetimeColumns = append(datetimeColumns, i)
		case schema.KindEnum:
			rules = append(rules, ValidationRule{
				ColumnIndex: i,
				Type:        RuleOneOfList,
				Values:      col.Enum,
			})
		}
	}
	if len(rules) > 0 {
		if err := api.SetValidation(ctx, table.Sheet, rules); err != nil {
			return err
		}
	}
	if len(datetimeColumns) > 0 {
		if err := api.FormatColumns(ctx, table.Sheet, datetimeColumns, datetimePattern); err != nil {
			return err
		}
	}
	return nil
}
