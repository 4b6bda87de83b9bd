package mirror

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	"github.com/atelier-ops/workshop-api/pkg/config"
)

// Pusher drains the audit queues into the sheet. Entries are processed in
// capture order and deleted only after the sheet write succeeded or retries
// ran out; an abandoned entry is logged, alerted and dropped so one poisoned
// change cannot wedge the queue. Reconciliation repairs whatever was
// dropped.
type Pusher struct {
	audit     *repository.AuditRepository
	projector *Projector
	alerter   *notify.Alerter
	metrics   Metrics
	cfg       config.SyncConfig
	logger    *zap.Logger
}

// NewPusher constructs the pusher. alerter and metrics may be nil.
func NewPusher(audit *repository.AuditRepository, projector *Projector, alerter *notify.Alerter, metrics Metrics, cfg config.SyncConfig, logger *zap.Logger) *Pusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Pusher{
		audit:     audit,
		projector: projector,
		alerter:   alerter,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run drains the queues on a fixed interval until the context is cancelled.
func (p *Pusher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PushInterval)
	defer ticker.Stop()
	p.logger.Info("sheet pusher started", zap.Duration("interval", p.cfg.PushInterval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("sheet pusher stopped")
			return
		case <-ticker.C:
			p.Drain(ctx)
		}
	}
}

// Drain runs one pass over every table's queue.
func (p *Pusher) Drain(ctx context.Context) {
	for _, table := range schema.Tables {
		if err := p.drainTable(ctx, table); err != nil {
			p.logger.Error("queue drain failed", zap.String("table", table.Name), zap.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (p *Pusher) drainTable(ctx context.Context, table schema.Table) error {
	entries, err := p.audit.ListPending(ctx, table.Name, p.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	processed := make([]int64, 0, len(entries))
	for _, entry := range entries {
		err := p.processWithRetry(ctx, table, entry)
		if p.metrics != nil {
			p.metrics.PushProcessed(table.Name, err == nil)
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("queue entry abandoned after retries",
				zap.String("table", table.Name),
				zap.Int64("audit_id", entry.AuditID),
				zap.Int64("row_id", entry.RowID),
				zap.String("action", string(entry.Action)),
				zap.Error(err))
			if p.alerter != nil {
				p.alerter.Alert(ctx, "push:"+table.Name, fmt.Sprintf(
					"⚠️ Ошибка синхронизации с Google Sheets\n\n"+
						"• Таблица: %s\n• ID записи: %d\n• Лист: %s\n• Ошибка: %v\n\n"+
						"Изменение не попало в таблицу, требуется пересинхронизация.",
					table.Name, entry.RowID, table.Sheet, err))
			}
		}
		// Acknowledge either way: a success is done, a failure is dropped.
		processed = append(processed, entry.AuditID)
	}
	return p.audit.Acknowledge(ctx, table.Name, processed)
}

func (p *Pusher) processWithRetry(ctx context.Context, table schema.Table, entry models.AuditEntry) error {
	var lastErr error
	backoff := p.cfg.BackoffBase
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		lastErr = p.process(ctx, table, entry)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if attempt < p.cfg.MaxAttempts {
			p.logger.Warn("sheet write failed, retrying",
				zap.String("table", table.Name),
				zap.Int64("audit_id", entry.AuditID),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			case <-timer.C:
			}
			backoff *= 2
		}
	}
	return lastErr
}

func (p *Pusher) process(ctx context.Context, table schema.Table, entry models.AuditEntry) error {
	if entry.Action == models.AuditDelete {
		return p.projector.Delete(ctx, table, entry.RowID)
	}
	values, err := SnapshotValues(table, entry.Snapshot)
	if err != nil {
		return err
	}
	return p.projector.Upsert(ctx, table, entry.RowID, values)
}
