package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/schema"
)

// AuditRepository manages the per-table change queues feeding the spreadsheet
// mirror. Queue rows live only until the pusher acknowledges them.
type AuditRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB, logger *zap.Logger) *AuditRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRepository{db: db, logger: logger}
}

func auditTable(table string) (string, error) {
	if _, ok := schema.ByName(table); !ok {
		return "", fmt.Errorf("unknown audited table %q", table)
	}
	return table + "_audit", nil
}

// Record captures a row change inside the caller's transaction. The insert
// runs under a savepoint: if it fails, the savepoint is rolled back and the
// business write proceeds untouched. Capture is best-effort; a lost queue
// entry is repaired later by reconciliation.
func (r *AuditRepository) Record(ctx context.Context, tx *sqlx.Tx, table string, action models.AuditAction, rowID int64, row interface{}) {
	target, err := auditTable(table)
	if err != nil {
		r.logger.Warn("audit capture skipped", zap.Error(err))
		return
	}
	snapshot, err := json.Marshal(row)
	if err != nil {
		r.logger.Warn("audit snapshot marshal failed",
			zap.String("table", table), zap.Int64("row_id", rowID), zap.Error(err))
		return
	}
	if _, err := tx.ExecContext(ctx, "SAVEPOINT audit_capture"); err != nil {
		r.logger.Warn("audit savepoint failed", zap.String("table", table), zap.Error(err))
		return
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (action, row_id, snapshot) VALUES ($1, $2, $3)", target)
	if _, err := tx.ExecContext(ctx, query, action, rowID, snapshot); err != nil {
		r.logger.Warn("audit capture failed",
			zap.String("table", table), zap.Int64("row_id", rowID), zap.Error(err))
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT audit_capture"); rbErr != nil {
			r.logger.Error("audit savepoint rollback failed", zap.Error(rbErr))
		}
		return
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT audit_capture"); err != nil {
		r.logger.Warn("audit savepoint release failed", zap.Error(err))
	}
}

// ListPending returns the oldest queued entries for a table in capture order.
func (r *AuditRepository) ListPending(ctx context.Context, table string, limit int) ([]models.AuditEntry, error) {
	target, err := auditTable(table)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT audit_id, action, row_id, snapshot, recorded_at FROM %s ORDER BY audit_id ASC LIMIT $1", target)
	var entries []models.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list pending audit: %w", err)
	}
	return entries, nil
}

// Acknowledge removes processed entries from the queue. Called only after the
// sheet write succeeded, or after retries were exhausted and the entry is
// deliberately abandoned.
func (r *AuditRepository) Acknowledge(ctx context.Context, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	target, err := auditTable(table)
	if err != nil {
		return err
	}
	query, args, err := sqlx.In(fmt.Sprintf("DELETE FROM %s WHERE audit_id IN (?)", target), ids)
	if err != nil {
		return fmt.Errorf("acknowledge audit: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("acknowledge audit: %w", err)
	}
	return nil
}

// QueueDepth reports how many entries remain unprocessed for a table.
func (r *AuditRepository) QueueDepth(ctx context.Context, table string) (int64, error) {
	target, err := auditTable(table)
	if err != nil {
		return 0, err
	}
	var depth int64
	if err := r.db.GetContext(ctx, &depth, fmt.Sprintf("SELECT COUNT(*) FROM %s", target)); err != nil {
		return 0, fmt.Errorf("audit queue depth: %w", err)
	}
	return depth, nil
}
