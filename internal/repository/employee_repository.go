package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/schema"
)

// EmployeeRepository persists workshop staff records.
type EmployeeRepository struct {
	db    *sqlx.DB
	audit *AuditRepository
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB, audit *AuditRepository) *EmployeeRepository {
	return &EmployeeRepository{db: db, audit: audit}
}

// Create inserts a new employee row and queues it for the mirror.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.Status == "" {
		employee.Status = models.EmployeePending
	}
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO employees (tg_id, name, job, status, created_at)
	VALUES (:tg_id, :name, :job, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	r.audit.Record(ctx, tx, schema.Employees.Name, models.AuditInsert, employee.TgID, employee)
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// GetByID fetches an employee by chat id.
func (r *EmployeeRepository) GetByID(ctx context.Context, tgID int64) (*models.Employee, error) {
	const query = `SELECT tg_id, name, job, status, created_at FROM employees WHERE tg_id = $1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, tgID); err != nil {
		return nil, err
	}
	return &employee, nil
}

// List returns employees matching the filter, oldest first.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT tg_id, name, job, status, created_at FROM employees`)
	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)
	if filter.Job != nil {
		args = append(args, *filter.Job)
		conditions = append(conditions, fmt.Sprintf("job = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC")

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// UpdateStatus moves an employee to a new approval status and queues the
// change. Returns the updated row.
func (r *EmployeeRepository) UpdateStatus(ctx context.Context, tgID int64, status models.EmployeeStatus) (*models.Employee, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update employee status: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE employees SET status = $1 WHERE tg_id = $2
	RETURNING tg_id, name, job, status, created_at`
	var employee models.Employee
	if err := tx.GetContext(ctx, &employee, query, status, tgID); err != nil {
		return nil, err
	}
	r.audit.Record(ctx, tx, schema.Employees.Name, models.AuditUpdate, employee.TgID, &employee)
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update employee status: %w", err)
	}
	return &employee, nil
}

// Delete removes an employee outright. Used when a manager rejects a pending
// signup; nothing of the record is kept.
func (r *EmployeeRepository) Delete(ctx context.Context, tgID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE tg_id = $1`, tgID)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if affected == 0 {
		return ErrNoRows
	}
	r.audit.Record(ctx, tx, schema.Employees.Name, models.AuditDelete, tgID, map[string]int64{"tg_id": tgID})
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}
