package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryRecordSurvivesCaptureFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db, nil)
	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT audit_capture").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO batches_audit")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT audit_capture").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	repo.Record(context.Background(), tx, "batches", models.AuditUpdate, 7, map[string]int64{"batch_id": 7})
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryRecordRejectsUnknownTable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db, nil)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	repo.Record(context.Background(), tx, "passwords", models.AuditInsert, 1, nil)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListPendingAndAcknowledge(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db, nil)
	rows := sqlmock.NewRows([]string{"audit_id", "action", "row_id", "snapshot", "recorded_at"}).
		AddRow(1, "INSERT", 10, []byte(`{"batch_id":10}`), time.Now()).
		AddRow(2, "UPDATE", 10, []byte(`{"batch_id":10}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT audit_id, action, row_id, snapshot, recorded_at FROM batches_audit")).
		WithArgs(50).
		WillReturnRows(rows)

	entries, err := repo.ListPending(context.Background(), "batches", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditInsert, entries[0].Action)
	require.Equal(t, int64(10), entries[1].RowID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM batches_audit WHERE audit_id IN")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.Acknowledge(context.Background(), "batches", []int64{1, 2}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryQueueDepth(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments_audit")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	depth, err := repo.QueueDepth(context.Background(), "payments")
	require.NoError(t, err)
	require.Equal(t, int64(3), depth)

	_, err = repo.QueueDepth(context.Background(), "sessions")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
