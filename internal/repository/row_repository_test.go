package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/schema"
)

func TestRowRepositoryGetRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRowRepository(db)
	rows := sqlmock.NewRows([]string{"tg_id", "name", "job", "status", "created_at"}).
		AddRow(int64(100), "Anna P", "SEAMSTRESS", "APPROVED", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT tg_id, name, job, status, created_at FROM employees WHERE tg_id = $1")).
		WithArgs(int64(100)).
		WillReturnRows(rows)

	row, err := repo.GetRow(context.Background(), schema.Employees, 100)
	require.NoError(t, err)
	require.Equal(t, int64(100), row["tg_id"])
	require.Equal(t, "Anna P", row["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRowRepositoryGetRowMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRowRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT tg_id, name, job, status, created_at FROM employees")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"tg_id"}))

	_, err := repo.GetRow(context.Background(), schema.Employees, 404)
	require.ErrorIs(t, err, ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRowRepositoryApplyUpdatesExistingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRowRepository(db)
	// created_at is absent from the map, so the update must not touch it.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET name = $1, job = $2, status = $3 WHERE tg_id = $4")).
		WithArgs("Anna Petrova", "SEAMSTRESS", "APPROVED", int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Apply(context.Background(), schema.Employees, 100, map[string]interface{}{
		"name":   "Anna Petrova",
		"job":    "SEAMSTRESS",
		"status": "APPROVED",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRowRepositoryApplyEmptyValuesIsNoOp(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRowRepository(db)
	err := repo.Apply(context.Background(), schema.Employees, 100, map[string]interface{}{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRowRepositoryApplyInsertsMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRowRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees (tg_id, name, job, status, created_at)")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Apply(context.Background(), schema.Employees, 100, map[string]interface{}{
		"name":   "Anna Petrova",
		"job":    "SEAMSTRESS",
		"status": "APPROVED",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
