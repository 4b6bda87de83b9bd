package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/schema"
)

const batchColumns = `batch_id, project_nm, product_nm, color, size, quantity, parts_count,
	cutter_id, seamstress_id, controller_id, status, type, created_at,
	sew_start_dttm, sew_end_dttm, control_dttm`

// BatchRepository persists production batches.
type BatchRepository struct {
	db    *sqlx.DB
	audit *AuditRepository
}

// NewBatchRepository constructs the repository.
func NewBatchRepository(db *sqlx.DB, audit *AuditRepository) *BatchRepository {
	return &BatchRepository{db: db, audit: audit}
}

// Create inserts a new batch, fills the generated id and queues the row for
// the mirror.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.Status == "" {
		batch.Status = models.BatchCreated
	}
	if batch.Type == "" {
		batch.Type = models.BatchRegular
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO batches
	(project_nm, product_nm, color, size, quantity, parts_count, cutter_id, status, type, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING batch_id`
	if err := tx.GetContext(ctx, &batch.BatchID, query,
		batch.ProjectNm, batch.ProductNm, batch.Color, batch.Size,
		batch.Quantity, batch.PartsCount, batch.CutterID,
		batch.Status, batch.Type, batch.CreatedAt); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	r.audit.Record(ctx, tx, schema.Batches.Name, models.AuditInsert, batch.BatchID, batch)
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID fetches a batch by identifier.
func (r *BatchRepository) GetByID(ctx context.Context, batchID int64) (*models.Batch, error) {
	query := fmt.Sprintf(`SELECT %s FROM batches WHERE batch_id = $1`, batchColumns)
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, batchID); err != nil {
		return nil, err
	}
	return &batch, nil
}

// List returns batches matching the filter, newest first.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM batches`, batchColumns))
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SeamstressID != nil {
		args = append(args, *filter.SeamstressID)
		conditions = append(conditions, fmt.Sprintf("seamstress_id = $%d", len(args)))
	}
	if filter.CutterID != nil {
		args = append(args, *filter.CutterID)
		conditions = append(conditions, fmt.Sprintf("cutter_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.PageSize
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, (page-1)*limit))

	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// TransitionParams describes one guarded status change. The update applies
// only if the batch currently sits in one of From; optional guards pin the
// assignment columns so concurrent claimers cannot both win.
type TransitionParams struct {
	BatchID           int64
	From              []models.BatchStatus
	To                models.BatchStatus
	RequireUnassigned bool
	RequireSeamstress *int64
	SetSeamstress     *int64
	SetController     *int64
	SetSewStart       *time.Time
	SetSewEnd         *time.Time
	SetControl        *time.Time
}

// Transition performs a check-and-set status update in a single statement.
// Returns ErrNoRows when the guard did not match, leaving the caller to
// distinguish a missing batch from a lost race.
func (r *BatchRepository) Transition(ctx context.Context, params TransitionParams) (*models.Batch, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("transition batch: %w", err)
	}
	defer tx.Rollback()

	args := make([]interface{}, 0, 8)
	args = append(args, params.To)
	sets := []string{"status = $1"}
	if params.SetSeamstress != nil {
		args = append(args, *params.SetSeamstress)
		sets = append(sets, fmt.Sprintf("seamstress_id = $%d", len(args)))
	}
	if params.SetController != nil {
		args = append(args, *params.SetController)
		sets = append(sets, fmt.Sprintf("controller_id = $%d", len(args)))
	}
	if params.SetSewStart != nil {
		args = append(args, *params.SetSewStart)
		sets = append(sets, fmt.Sprintf("sew_start_dttm = $%d", len(args)))
	}
	if params.SetSewEnd != nil {
		args = append(args, *params.SetSewEnd)
		sets = append(sets, fmt.Sprintf("sew_end_dttm = $%d", len(args)))
	}
	if params.SetControl != nil {
		args = append(args, *params.SetControl)
		sets = append(sets, fmt.Sprintf("control_dttm = $%d", len(args)))
	}

	args = append(args, params.BatchID)
	conditions := []string{fmt.Sprintf("batch_id = $%d", len(args))}
	if len(params.From) > 0 {
		placeholders := make([]string, len(params.From))
		for i, status := range params.From {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if params.RequireUnassigned {
		conditions = append(conditions, "seamstress_id IS NULL")
	}
	if params.RequireSeamstress != nil {
		args = append(args, *params.RequireSeamstress)
		conditions = append(conditions, fmt.Sprintf("seamstress_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE batches SET %s WHERE %s RETURNING %s`,
		strings.Join(sets, ", "), strings.Join(conditions, " AND "), batchColumns)

	var batch models.Batch
	if err := tx.GetContext(ctx, &batch, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("transition batch: %w", err)
	}
	r.audit.Record(ctx, tx, schema.Batches.Name, models.AuditUpdate, batch.BatchID, &batch)
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("transition batch: %w", err)
	}
	return &batch, nil
}
