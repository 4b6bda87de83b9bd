package mirror

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

// Reconciler diffs the store against the sheet and makes the sheet match.
// Every discrepancy is fixed independently; one bad row never aborts the
// run. The store always wins.
type Reconciler struct {
	rows   *repository.RowRepository
	api    API
	logger *zap.Logger
}

// NewReconciler constructs the reconciler.
func NewReconciler(rows *repository.RowRepository, api API, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{rows: rows, api: api, logger: logger}
}

// Reconcile runs a full diff over the named tables, or all mirrored tables
// when the list is empty.
func (r *Reconciler) Reconcile(ctx context.Context, tables []string) (dto.ResyncReport, error) {
	targets := schema.Tables
	if len(tables) > 0 {
		targets = targets[:0:0]
		for _, name := range tables {
			table, ok := schema.ByName(name)
			if !ok {
				return dto.ResyncReport{}, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("unknown table %q", name))
			}
			targets = append(targets, table)
		}
	}

	var report dto.ResyncReport
	for _, table := range targets {
		tableReport, err := r.reconcileTable(ctx, table)
		if err != nil {
			r.logger.Error("reconciliation failed for table",
				zap.String("table", table.Name), zap.Error(err))
			report.Failed++
			continue
		}
		report.Updated += tableReport.Updated
		report.Added += tableReport.Added
		report.Deleted += tableReport.Deleted
		report.Failed += tableReport.Failed
	}
	r.logger.Info("reconciliation finished",
		zap.Int("updated", report.Updated),
		zap.Int("added", report.Added),
		zap.Int("deleted", report.Deleted),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (r *Reconciler) reconcileTable(ctx context.Context, table schema.Table) (dto.ResyncReport, error) {
	var report dto.ResyncReport

	storeRows, err := r.rows.ListRows(ctx, table)
	if err != nil {
		return report, err
	}
	sheetRows, err := r.api.GetRows(ctx, table.Sheet)
	if err != nil {
		return report, err
	}

	// Index sheet rows by their key cell. Rows without a parseable key are
	// treated as strays and removed.
	sheetIndex := make(map[int64]int, len(sheetRows))
	var strayRows []int
	for i, row := range sheetRows {
		if i == 0 {
			continue
		}
		if len(row) == 0 {
			continue
		}
		key, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			strayRows = append(strayRows, i+1)
			continue
		}
		sheetIndex[key] = i + 1
	}

	matched := make(map[int64]bool, len(storeRows))
	for _, storeRow := range storeRows {
		id, ok := rowKey(table, storeRow)
		if !ok {
			report.Failed++
			continue
		}
		want := RowValues(table, storeRow)
		rowIndex, onSheet := sheetIndex[id]
		if !onSheet {
			if err := r.api.AppendRow(ctx, table.Sheet, want); err != nil {
				r.logger.Error("reconcile append failed",
					zap.String("table", table.Name), zap.Int64("row_id", id), zap.Error(err))
				report.Failed++
				continue
			}
			report.Added++
			continue
		}
		matched[id] = true
		if cellsEqual(want, sheetRows[rowIndex-1]) {
			continue
		}
		if err := r.api.UpdateRow(ctx, table.Sheet, rowIndex, want); err != nil {
			r.logger.Error("reconcile update failed",
				zap.String("table", table.Name), zap.Int64("row_id", id), zap.Error(err))
			report.Failed++
			continue
		}
		report.Updated++
	}

	// Sheet rows whose key no longer exists in the store, plus stray rows.
	var doomed []int
	for key, rowIndex := range sheetIndex {
		if !matched[key] {
			doomed = append(doomed, rowIndex)
		}
	}
	doomed = append(doomed, strayRows...)
	// Delete bottom-up so earlier deletions do not shift later targets.
	sort.Sort(sort.Reverse(sort.IntSlice(doomed)))
	for _, rowIndex := range doomed {
		if err := r.api.DeleteRow(ctx, table.Sheet, rowIndex); err != nil {
			r.logger.Error("reconcile delete failed",
				zap.String("table", table.Name), zap.Int("row", rowIndex), zap.Error(err))
			report.Failed++
			continue
		}
		report.Deleted++
	}
	return report, nil
}

func rowKey(table schema.Table, row map[string]interface{}) (int64, bool) {
	switch v := row[table.PK().Name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case []byte:
		id, err := strconv.ParseInt(string(v), 10, 64)
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

func cellsEqual(want []interface{}, have []string) bool {
	for i, cell := range want {
		text, _ := cell.(string)
		actual := ""
		if i < len(have) {
			actual = strings.TrimSpace(have[i])
		}
		if text != actual {
			return false
		}
	}
	for i := len(want); i < len(have); i++ {
		if strings.TrimSpace(have[i]) != "" {
			return false
		}
	}
	return true
}
