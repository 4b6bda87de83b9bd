package mirror

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

// Puller applies human sheet edits back to the store. Rejected edits never
// touch the store; a failed or malformed edit triggers a manager alert and a
// corrective re-projection so the sheet snaps back to what the store holds.
type Puller struct {
	rows      *repository.RowRepository
	projector *Projector
	alerter   *notify.Alerter
	metrics   Metrics
	logger    *zap.Logger
}

// NewPuller constructs the puller. alerter and metrics may be nil.
func NewPuller(rows *repository.RowRepository, projector *Projector, alerter *notify.Alerter, metrics Metrics, logger *zap.Logger) *Puller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Puller{rows: rows, projector: projector, alerter: alerter, metrics: metrics, logger: logger}
}

func (pl *Puller) alert(ctx context.Context, key, text string) {
	if pl.alerter != nil {
		pl.alerter.Alert(ctx, key, text)
	}
}

func (pl *Puller) observe(success bool) {
	if pl.metrics != nil {
		pl.metrics.PullProcessed(success)
	}
}

// HandleEdit processes one edit notification from the sheet script.
func (pl *Puller) HandleEdit(ctx context.Context, edit dto.SheetEditNotification) error {
	table, ok := schema.BySheet(edit.SheetName)
	if !ok {
		pl.observe(false)
		pl.alert(ctx, "pull:unknown-sheet:"+edit.SheetName, fmt.Sprintf(
			"⚠️ Ошибка синхронизации с Google Sheets\n\n"+
				"• Лист: %s\n• Ошибка: лист не привязан ни к одной таблице", edit.SheetName))
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("sheet %q is not mirrored", edit.SheetName))
	}

	if edit.NumRows != 1 {
		pl.observe(false)
		pl.alert(ctx, "pull:mass-edit:"+table.Name, fmt.Sprintf(
			"⚠️ Обнаружено массовое редактирование\n\n"+
				"• Лист: %s\n• Выбранные ячейки: %d строк\n\n"+
				"Пожалуйста, редактируйте ячейки по одной!", edit.SheetName, edit.NumRows))
		return appErrors.Clone(appErrors.ErrValidation, "multi-row edits are not accepted")
	}

	if edit.RowID == "" {
		pl.observe(false)
		pl.alert(ctx, "pull:missing-id:"+table.Name, fmt.Sprintf(
			"⚠️ Ошибка синхронизации с Google Sheets\n\n"+
				"• Лист: %s\n• Ошибка: строка без ID\n\n"+
				"Требуется пересинхронизация листа.", edit.SheetName))
		return appErrors.Clone(appErrors.ErrValidation, "edited row carries no id")
	}

	id, err := strconv.ParseInt(edit.RowID, 10, 64)
	if err != nil {
		pl.observe(false)
		pl.fail(ctx, table, edit.RowID, fmt.Sprintf("некорректный ID записи: %v", err))
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "row id is not an integer")
	}

	values, err := pl.parseRow(table, edit.EntireRow)
	if err != nil {
		pl.observe(false)
		pl.fail(ctx, table, edit.RowID, err.Error())
		pl.repair(ctx, table, id)
		return err
	}

	current, err := pl.rows.GetRow(ctx, table, id)
	switch {
	case err == nil:
		pl.pruneUnchanged(table, current, edit.EntireRow, values)
		if len(values) == 0 {
			pl.observe(true)
			pl.logger.Debug("sheet edit carried no changes",
				zap.String("table", table.Name), zap.Int64("row_id", id))
			return nil
		}
	case errors.Is(err, repository.ErrNoRows):
		// Row is gone from the store; Apply re-inserts it whole.
	default:
		pl.observe(false)
		pl.fail(ctx, table, edit.RowID, err.Error())
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sheet edit lookup failed")
	}

	if err := pl.rows.Apply(ctx, table, id, values); err != nil {
		pl.observe(false)
		pl.fail(ctx, table, edit.RowID, err.Error())
		pl.repair(ctx, table, id)
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "sheet edit rejected by store")
	}

	pl.observe(true)
	pl.logger.Info("sheet edit applied",
		zap.String("table", table.Name), zap.Int64("row_id", id))
	return nil
}

// parseRow converts the positional cells into typed store values keyed by
// column name. The primary key cell is ignored; the webhook's row_id is
// authoritative.
func (pl *Puller) parseRow(table schema.Table, cells []string) (map[string]interface{}, error) {
	if len(cells) != len(table.Columns) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
			"row has %d cells, sheet %s carries %d columns", len(cells), table.Sheet, len(table.Columns)))
	}
	values := make(map[string]interface{}, len(table.Columns)-1)
	for i, col := range table.Columns {
		if i == 0 {
			continue
		}
		parsed, err := ParseCell(col, cells[i])
		if err != nil {
			return nil, err
		}
		values[col.Name] = parsed
	}
	return values, nil
}

// pruneUnchanged drops columns whose incoming cell is exactly the sheet
// rendering of the stored value. Touched-but-unedited cells then leave the
// store untouched, so a pull of pushed data stays a no-op and store precision
// the sheet cannot represent survives.
func (pl *Puller) pruneUnchanged(table schema.Table, current map[string]interface{}, cells []string, values map[string]interface{}) {
	for i, col := range table.Columns {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(cells[i]) == FormatValue(col, current[col.Name]) {
			delete(values, col.Name)
		}
	}
}

func (pl *Puller) fail(ctx context.Context, table schema.Table, rowID, reason string) {
	pl.logger.Error("sheet edit rejected",
		zap.String("table", table.Name), zap.String("row_id", rowID), zap.String("reason", reason))
	pl.alert(ctx, "pull:failed:"+table.Name, fmt.Sprintf(
		"⚠️ Ошибка синхронизации с Google Sheets\n\n"+
			"• Таблица: %s\n• ID записи: %s\n• Лист: %s\n• Ошибка: %s",
		table.Name, rowID, table.Sheet, reason))
}

// repair re-projects the store's truth over the rejected sheet row. A row
// that no longer exists in the store is removed from the sheet instead.
func (pl *Puller) repair(ctx context.Context, table schema.Table, id int64) {
	row, err := pl.rows.GetRow(ctx, table, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			if delErr := pl.projector.Delete(ctx, table, id); delErr != nil {
				pl.logger.Error("corrective delete failed",
					zap.String("table", table.Name), zap.Int64("row_id", id), zap.Error(delErr))
			}
			return
		}
		pl.logger.Error("corrective lookup failed",
			zap.String("table", table.Name), zap.Int64("row_id", id), zap.Error(err))
		return
	}
	if err := pl.projector.Upsert(ctx, table, id, RowValues(table, row)); err != nil {
		pl.logger.Error("corrective projection failed",
			zap.String("table", table.Name), zap.Int64("row_id", id), zap.Error(err))
	}
}
