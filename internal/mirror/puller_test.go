package mirror

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

func TestPullerRejectsMassEdit(t *testing.T) {
	// Anything but exactly one row is a mass edit, a zero count included.
	for _, numRows := range []int{3, 0} {
		db, mock, cleanup := newMirrorDBMock(t)

		notifier := &recordingNotifier{}
		alerter := notify.NewAlerter(notifier, nil, []int64{1}, time.Minute, nil)
		puller := NewPuller(repository.NewRowRepository(db), NewProjector(newFakeAPI(), nil, nil), alerter, nil, nil)

		err := puller.HandleEdit(context.Background(), dto.SheetEditNotification{
			SheetName: schema.Batches.Sheet,
			RowID:     "5",
			NumRows:   numRows,
		})
		require.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
		require.Equal(t, 1, notifier.count())
		require.NoError(t, mock.ExpectationsWereMet(), "a rejected edit must not touch the store")
		cleanup()
	}
}

func TestPullerRejectsRowWithoutID(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	notifier := &recordingNotifier{}
	alerter := notify.NewAlerter(notifier, nil, []int64{1}, time.Minute, nil)
	puller := NewPuller(repository.NewRowRepository(db), NewProjector(newFakeAPI(), nil, nil), alerter, nil, nil)

	err := puller.HandleEdit(context.Background(), dto.SheetEditNotification{
		SheetName: schema.Employees.Sheet,
		RowID:     "",
		NumRows:   1,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
	require.Equal(t, 1, notifier.count())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPullerAppliesSingleRowEdit(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	puller := NewPuller(repository.NewRowRepository(db), NewProjector(newFakeAPI(), nil, nil), nil, nil, nil)

	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT tg_id, name, job, status, created_at FROM employees WHERE tg_id = $1")).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"tg_id", "name", "job", "status", "created_at"}).
			AddRow(int64(100), "Anna P", "SEAMSTRESS", "APPROVED", created))
	// Only the renamed column reaches the store.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET name = $1 WHERE tg_id = $2")).
		WithArgs("Anna Petrova", int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := puller.HandleEdit(context.Background(), dto.SheetEditNotification{
		SheetName: schema.Employees.Sheet,
		RowID:     "100",
		NumRows:   1,
		EntireRow: []string{"100", "Anna Petrova", "SEAMSTRESS", "APPROVED", "01.06.2026 10:00:00"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPullerPushedRowEditedBackIsNoOp(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	// Sub-second precision exists only in the store; its rendering carries
	// whole seconds, and pulling that rendering back must not truncate it.
	created := time.Date(2026, 6, 1, 10, 0, 37, 500000000, time.UTC)
	row := map[string]interface{}{
		"tg_id": int64(100), "name": "Anna P", "job": "SEAMSTRESS",
		"status": "APPROVED", "created_at": created,
	}
	cells := RowValues(schema.Employees, row)
	require.Equal(t, "01.06.2026 10:00:37", cells[4])

	mock.ExpectQuery(regexp.QuoteMeta("SELECT tg_id, name, job, status, created_at FROM employees WHERE tg_id = $1")).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"tg_id", "name", "job", "status", "created_at"}).
			AddRow(int64(100), "Anna P", "SEAMSTRESS", "APPROVED", created))

	puller := NewPuller(repository.NewRowRepository(db), NewProjector(newFakeAPI(), nil, nil), nil, nil, nil)
	err := puller.HandleEdit(context.Background(), dto.SheetEditNotification{
		SheetName: schema.Employees.Sheet,
		RowID:     "100",
		NumRows:   1,
		EntireRow: toStrings(cells),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "an unedited pull must not write the store")
}

func TestPullerEnumViolationTriggersCorrectiveProjection(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	// The sheet holds the mangled value a human typed in.
	require.NoError(t, api.AppendRow(context.Background(),
		schema.Employees.Sheet, []interface{}{"100", "Anna P", "SEAMSTRESS", "APPOVED", ""}))

	notifier := &recordingNotifier{}
	alerter := notify.NewAlerter(notifier, nil, []int64{1}, time.Minute, nil)
	puller := NewPuller(repository.NewRowRepository(db), NewProjector(api, nil, nil), alerter, nil, nil)

	// Corrective path reads the store's truth.
	storeRow := sqlmock.NewRows([]string{"tg_id", "name", "job", "status", "created_at"}).
		AddRow(int64(100), "Anna P", "SEAMSTRESS", "APPROVED", time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT tg_id, name, job, status, created_at FROM employees WHERE tg_id = $1")).
		WithArgs(int64(100)).
		WillReturnRows(storeRow)

	err := puller.HandleEdit(context.Background(), dto.SheetEditNotification{
		SheetName: schema.Employees.Sheet,
		RowID:     "100",
		NumRows:   1,
		EntireRow: []string{"100", "Anna P", "SEAMSTRESS", "APPOVED", "01.06.2026 10:00:00"},
	})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
	require.Equal(t, 1, notifier.count())

	sheet, getErr := api.GetRows(context.Background(), schema.Employees.Sheet)
	require.NoError(t, getErr)
	require.Len(t, sheet, 2)
	require.Equal(t, "APPROVED", sheet[1][3], "sheet must snap back to the store value")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPullerRemovesSheetRowWhenStoreRowIsGone(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	require.NoError(t, api.AppendRow(context.Background(),
		schema.Employees.Sheet, []interface{}{"100", "Anna P", "SEAMSTRESS", "bad", ""}))

	puller := NewPuller(repository.NewRowRepository(db), NewProjector(api, nil, nil), nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT tg_id, name, job, status, created_at FROM employees WHERE tg_id = $1")).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"tg_id"}))

	err := puller.HandleEdit(context.Background(), dto.SheetEditNotification{
		SheetName: schema.Employees.Sheet,
		RowID:     "100",
		NumRows:   1,
		EntireRow: []string{"100", "Anna P", "SEAMSTRESS", "bad", ""},
	})
	require.Error(t, err)

	sheet, getErr := api.GetRows(context.Background(), schema.Employees.Sheet)
	require.NoError(t, getErr)
	require.Len(t, sheet, 1, "orphaned sheet row must be removed")
	require.NoError(t, mock.ExpectationsWereMet())
}
