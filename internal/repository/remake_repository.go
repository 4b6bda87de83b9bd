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

const remakeColumns = `remake_id, equipment_nm, description, applicant_id, status, created_at`

// RemakeRepository persists equipment repair tickets.
type RemakeRepository struct {
	db    *sqlx.DB
	audit *AuditRepository
}

// NewRemakeRepository constructs the repository.
func NewRemakeRepository(db *sqlx.DB, audit *AuditRepository) *RemakeRepository {
	return &RemakeRepository{db: db, audit: audit}
}

// Create inserts a new ticket and queues it for the mirror.
func (r *RemakeRepository) Create(ctx context.Context, remake *models.Remake) error {
	if remake.Status == "" {
		remake.Status = models.RemakeCreated
	}
	if remake.CreatedAt.IsZero() {
		remake.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create remake: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO remakes (equipment_nm, description, applicant_id, status, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING remake_id`
	if err := tx.GetContext(ctx, &remake.RemakeID, query,
		remake.EquipmentNm, remake.Description, remake.ApplicantID,
		remake.Status, remake.CreatedAt); err != nil {
		return fmt.Errorf("create remake: %w", err)
	}
	r.audit.Record(ctx, tx, schema.Remakes.Name, models.AuditInsert, remake.RemakeID, remake)
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create remake: %w", err)
	}
	return nil
}

// GetByID fetches a ticket by identifier.
func (r *RemakeRepository) GetByID(ctx context.Context, remakeID int64) (*models.Remake, error) {
	query := fmt.Sprintf(`SELECT %s FROM remakes WHERE remake_id = $1`, remakeColumns)
	var remake models.Remake
	if err := r.db.GetContext(ctx, &remake, query, remakeID); err != nil {
		return nil, err
	}
	return &remake, nil
}

// List returns tickets, optionally narrowed by status or applicant,
// newest first.
func (r *RemakeRepository) List(ctx context.Context, filter models.RemakeFilter) ([]models.Remake, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM remakes`, remakeColumns))
	var conditions []string
	args := make([]interface{}, 0, len(filter.Statuses)+1)
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ApplicantID != nil {
		args = append(args, *filter.ApplicantID)
		conditions = append(conditions, fmt.Sprintf("applicant_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	var remakes []models.Remake
	if err := r.db.SelectContext(ctx, &remakes, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list remakes: %w", err)
	}
	return remakes, nil
}

// Advance performs a check-and-set status change on a ticket.
func (r *RemakeRepository) Advance(ctx context.Context, remakeID int64, from, to models.RemakeStatus) (*models.Remake, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("advance remake: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`UPDATE remakes SET status = $1 WHERE remake_id = $2 AND status = $3
	RETURNING %s`, remakeColumns)
	var remake models.Remake
	if err := tx.GetContext(ctx, &remake, query, to, remakeID, from); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("advance remake: %w", err)
	}
	r.audit.Record(ctx, tx, schema.Remakes.Name, models.AuditUpdate, remake.RemakeID, &remake)
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("advance remake: %w", err)
	}
	return &remake, nil
}
