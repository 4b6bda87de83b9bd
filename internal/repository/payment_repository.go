package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/schema"
)

// PaymentRepository persists the append-only compensation ledger.
type PaymentRepository struct {
	db    *sqlx.DB
	audit *AuditRepository
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB, audit *AuditRepository) *PaymentRepository {
	return &PaymentRepository{db: db, audit: audit}
}

// Create inserts a payment record and queues it for the mirror.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO payments (employee_id, amount, type, payment_date)
	VALUES ($1, $2, $3, $4)
	RETURNING payment_id`
	if err := tx.GetContext(ctx, &payment.PaymentID, query,
		payment.EmployeeID, payment.Amount, payment.Type, payment.PaymentDate); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	r.audit.Record(ctx, tx, schema.Payments.Name, models.AuditInsert, payment.PaymentID, payment)
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// ListByEmployee returns one employee's payments, newest first.
func (r *PaymentRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]models.Payment, error) {
	const query = `SELECT payment_id, employee_id, amount, type, payment_date
	FROM payments WHERE employee_id = $1 ORDER BY payment_date DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, employeeID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
