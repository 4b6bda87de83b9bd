package mirror

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
)

func expectEmployeeListing(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT tg_id, name, job, status, created_at FROM employees ORDER BY tg_id ASC")).
		WillReturnRows(rows)
}

func TestReconcilerIsNoOpWhenInSync(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, api.AppendRow(context.Background(), schema.Employees.Sheet,
		[]interface{}{"100", "Anna P", "SEAMSTRESS", "APPROVED", "01.06.2026 10:00:00"}))

	expectEmployeeListing(mock, sqlmock.NewRows([]string{"tg_id", "name", "job", "status", "created_at"}).
		AddRow(int64(100), "Anna P", "SEAMSTRESS", "APPROVED", created))

	reconciler := NewReconciler(repository.NewRowRepository(db), api, nil)
	report, err := reconciler.Reconcile(context.Background(), []string{"employees"})
	require.NoError(t, err)
	require.Equal(t, dto.ResyncReport{}, report, "matching state must produce zero operations")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcilerRepairsDrift(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	// Row 100 drifted, row 999 is an orphan the store no longer knows, and
	// row 101 is missing from the sheet entirely.
	require.NoError(t, api.AppendRow(context.Background(), schema.Employees.Sheet,
		[]interface{}{"100", "Anna P", "SEAMSTRESS", "PENDING", ""}))
	require.NoError(t, api.AppendRow(context.Background(), schema.Employees.Sheet,
		[]interface{}{"999", "Ghost", "CUTTER", "APPROVED", ""}))

	expectEmployeeListing(mock, sqlmock.NewRows([]string{"tg_id", "name", "job", "status", "created_at"}).
		AddRow(int64(100), "Anna P", "SEAMSTRESS", "APPROVED", nil).
		AddRow(int64(101), "Boris K", "CUTTER", "APPROVED", nil))

	reconciler := NewReconciler(repository.NewRowRepository(db), api, nil)
	report, err := reconciler.Reconcile(context.Background(), []string{"employees"})
	require.NoError(t, err)
	require.Equal(t, dto.ResyncReport{Updated: 1, Added: 1, Deleted: 1}, report)

	sheet, getErr := api.GetRows(context.Background(), schema.Employees.Sheet)
	require.NoError(t, getErr)
	require.Len(t, sheet, 3)
	require.Equal(t, "APPROVED", sheet[1][3])
	require.Equal(t, "101", sheet[2][0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcilerRejectsUnknownTable(t *testing.T) {
	db, _, cleanup := newMirrorDBMock(t)
	defer cleanup()

	reconciler := NewReconciler(repository.NewRowRepository(db), newFakeAPI(), nil)
	_, err := reconciler.Reconcile(context.Background(), []string{"secrets"})
	require.Error(t, err)
}
