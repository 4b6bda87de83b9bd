package mirror

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	"github.com/atelier-ops/workshop-api/pkg/config"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Send(_ context.Context, _ int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func newMirrorDBMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func syncTestConfig() config.SyncConfig {
	return config.SyncConfig{
		PushInterval: time.Second,
		MaxAttempts:  3,
		BackoffBase:  time.Millisecond,
		BatchSize:    50,
	}
}

func TestPusherProjectsAndAcknowledges(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	pusher := NewPusher(
		repository.NewAuditRepository(db, nil),
		NewProjector(api, nil, nil),
		nil, nil, syncTestConfig(), nil)

	snapshot := `{"tg_id":100,"name":"Anna P","job":"SEAMSTRESS","status":"PENDING","created_at":"2026-06-01T10:00:00Z"}`
	rows := sqlmock.NewRows([]string{"audit_id", "action", "row_id", "snapshot", "recorded_at"}).
		AddRow(1, "INSERT", 100, []byte(snapshot), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees_audit")).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees_audit WHERE audit_id IN")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, pusher.drainTable(context.Background(), schema.Employees))

	sheet, err := api.GetRows(context.Background(), schema.Employees.Sheet)
	require.NoError(t, err)
	require.Len(t, sheet, 2)
	require.Equal(t, []string{"100", "Anna P", "SEAMSTRESS", "PENDING", "01.06.2026 10:00:00"}, sheet[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPusherDropsEntryAfterExhaustedRetriesAndAlerts(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	api.failNextWrites(3)

	notifier := &recordingNotifier{}
	alerter := notify.NewAlerter(notifier, nil, []int64{1}, time.Minute, nil)
	pusher := NewPusher(
		repository.NewAuditRepository(db, nil),
		NewProjector(api, nil, nil),
		alerter, nil, syncTestConfig(), nil)

	rows := sqlmock.NewRows([]string{"audit_id", "action", "row_id", "snapshot", "recorded_at"}).
		AddRow(7, "INSERT", 100, []byte(`{"tg_id":100,"name":"Anna P"}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees_audit")).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees_audit WHERE audit_id IN")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, pusher.drainTable(context.Background(), schema.Employees))

	// Entry is gone from the queue even though projection never landed.
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, 1, notifier.count())

	sheet, err := api.GetRows(context.Background(), schema.Employees.Sheet)
	require.NoError(t, err)
	require.Len(t, sheet, 1, "only the header survives a dropped entry")
}

func TestPusherRemovesDeletedRows(t *testing.T) {
	db, mock, cleanup := newMirrorDBMock(t)
	defer cleanup()

	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	projector := NewProjector(api, nil, nil)
	require.NoError(t, projector.Upsert(context.Background(), schema.Employees, 100,
		[]interface{}{"100", "Anna P", "SEAMSTRESS", "APPROVED", ""}))

	pusher := NewPusher(repository.NewAuditRepository(db, nil), projector, nil, nil, syncTestConfig(), nil)

	rows := sqlmock.NewRows([]string{"audit_id", "action", "row_id", "snapshot", "recorded_at"}).
		AddRow(2, "DELETE", 100, []byte(`{"tg_id":100}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees_audit")).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees_audit WHERE audit_id IN")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, pusher.drainTable(context.Background(), schema.Employees))

	sheet, err := api.GetRows(context.Background(), schema.Employees.Sheet)
	require.NoError(t, err)
	require.Len(t, sheet, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
