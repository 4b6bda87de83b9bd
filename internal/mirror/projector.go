package mirror

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/schema"
)

// Projector writes single rows through to the sheet. Every operation
// resolves the target row by primary key at call time; sheet row offsets are
// never cached because humans reorder and delete rows at will.
type Projector struct {
	api     API
	metrics Metrics
	logger  *zap.Logger
}

// NewProjector constructs the projector. metrics may be nil.
func NewProjector(api API, metrics Metrics, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{api: api, metrics: metrics, logger: logger}
}

func (p *Projector) observe(start time.Time) {
	if p.metrics != nil {
		p.metrics.ProjectionObserved(time.Since(start).Seconds())
	}
}

// findRow scans column A for the key and returns the 1-based sheet row, or 0
// if the key is not on the sheet.
func (p *Projector) findRow(ctx context.Context, table schema.Table, id int64) (int, error) {
	rows, err := p.api.GetRows(ctx, table.Sheet)
	if err != nil {
		return 0, err
	}
	key := strconv.FormatInt(id, 10)
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(row[0]) == key {
			return i + 1, nil
		}
	}
	return 0, nil
}

// Upsert writes one row: updated in place when the key is already on the
// sheet, appended otherwise. Projecting the same row twice converges on the
// same sheet state.
func (p *Projector) Upsert(ctx context.Context, table schema.Table, id int64, values []interface{}) error {
	defer p.observe(time.Now())
	rowIndex, err := p.findRow(ctx, table, id)
	if err != nil {
		return err
	}
	if rowIndex > 0 {
		return p.api.UpdateRow(ctx, table.Sheet, rowIndex, values)
	}
	return p.api.AppendRow(ctx, table.Sheet, values)
}

// Delete removes the sheet row holding the key. A key already absent from
// the sheet is a no-op, not an error: the queue may replay a delete.
func (p *Projector) Delete(ctx context.Context, table schema.Table, id int64) error {
	defer p.observe(time.Now())
	rowIndex, err := p.findRow(ctx, table, id)
	if err != nil {
		return err
	}
	if rowIndex == 0 {
		p.logger.Debug("delete target already absent from sheet",
			zap.String("table", table.Name), zap.Int64("row_id", id))
		return nil
	}
	return p.api.DeleteRow(ctx, table.Sheet, rowIndex)
}
