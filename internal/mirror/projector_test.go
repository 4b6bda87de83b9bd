package mirror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/schema"
)

func seedEmployeeSheet(t *testing.T, api *fakeAPI) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, api.EnsureSheet(ctx, schema.Employees.Sheet))
	require.NoError(t, api.SetHeader(ctx, schema.Employees.Sheet, schema.Employees.Headers()))
}

func TestProjectorUpsertAppendsThenUpdatesInPlace(t *testing.T) {
	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	projector := NewProjector(api, nil, nil)
	ctx := context.Background()

	values := []interface{}{"100", "Anna P", "SEAMSTRESS", "PENDING", "01.06.2026 10:00:00"}
	require.NoError(t, projector.Upsert(ctx, schema.Employees, 100, values))

	rows, err := api.GetRows(ctx, schema.Employees.Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Anna P", rows[1][1])

	updated := []interface{}{"100", "Anna P", "SEAMSTRESS", "APPROVED", "01.06.2026 10:00:00"}
	require.NoError(t, projector.Upsert(ctx, schema.Employees, 100, updated))
	require.NoError(t, projector.Upsert(ctx, schema.Employees, 100, updated))

	rows, err = api.GetRows(ctx, schema.Employees.Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2, "replaying the same projection must not duplicate the row")
	require.Equal(t, "APPROVED", rows[1][3])
}

func TestProjectorDeleteResolvesRowAtDeleteTime(t *testing.T) {
	api := newFakeAPI()
	seedEmployeeSheet(t, api)
	projector := NewProjector(api, nil, nil)
	ctx := context.Background()

	require.NoError(t, projector.Upsert(ctx, schema.Employees, 100,
		[]interface{}{"100", "Anna P", "SEAMSTRESS", "APPROVED", ""}))
	require.NoError(t, projector.Upsert(ctx, schema.Employees, 101,
		[]interface{}{"101", "Boris K", "CUTTER", "APPROVED", ""}))

	// A human reorders the sheet between projection and deletion.
	api.mu.Lock()
	sheet := api.sheets[schema.Employees.Sheet]
	sheet[1], sheet[2] = sheet[2], sheet[1]
	api.mu.Unlock()

	require.NoError(t, projector.Delete(ctx, schema.Employees, 100))

	rows, err := api.GetRows(ctx, schema.Employees.Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "101", rows[1][0], "the surviving row must be the one never deleted")

	// Deleting an already absent key is a no-op.
	require.NoError(t, projector.Delete(ctx, schema.Employees, 100))
}

func TestBootstrapCreatesSheetsWithEnumValidation(t *testing.T) {
	api := newFakeAPI()
	require.NoError(t, Bootstrap(context.Background(), api, nil))

	for _, table := range schema.Tables {
		rows, err := api.GetRows(context.Background(), table.Sheet)
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		require.Equal(t, table.Headers(), rows[0])
	}

	// Every batch status must be offered as a dropdown value.
	var statusRule *ValidationRule
	for i, rule := range api.validations[schema.Batches.Sheet] {
		if rule.Type == RuleOneOfList && schema.Batches.Columns[rule.ColumnIndex].Name == "status" {
			statusRule = &api.validations[schema.Batches.Sheet][i]
		}
	}
	require.NotNil(t, statusRule)
	require.ElementsMatch(t, []string{
		"CREATED", "SEWING", "SEWN", "DONE", "DEFECT",
		"REWORK_DEFECT", "REWORK_STARTED", "REWORK_FINISHED",
	}, statusRule.Values)
}
