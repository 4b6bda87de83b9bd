package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-ops/workshop-api/internal/schema"
)

// RowRepository reads and writes mirrored tables generically, driven by the
// schema registry. It backs the pull side of the spreadsheet sync and the
// reconciler, which operate on any mirrored table by name.
type RowRepository struct {
	db *sqlx.DB
}

// NewRowRepository constructs the repository.
func NewRowRepository(db *sqlx.DB) *RowRepository {
	return &RowRepository{db: db}
}

// GetRow returns one row keyed by store column name, or ErrNoRows.
func (r *RowRepository) GetRow(ctx context.Context, table schema.Table, id int64) (map[string]interface{}, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(table.ColumnNames(), ", "), table.Name, table.PK().Name)
	row := r.db.QueryRowxContext(ctx, query, id)
	dest := map[string]interface{}{}
	if err := row.MapScan(dest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("get row %s/%d: %w", table.Name, id, err)
	}
	return dest, nil
}

// ListRows returns every row of a mirrored table in primary key order.
func (r *RowRepository) ListRows(ctx context.Context, table schema.Table) ([]map[string]interface{}, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		strings.Join(table.ColumnNames(), ", "), table.Name, table.PK().Name)
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rows %s: %w", table.Name, err)
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		dest := map[string]interface{}{}
		if err := rows.MapScan(dest); err != nil {
			return nil, fmt.Errorf("list rows %s: %w", table.Name, err)
		}
		out = append(out, dest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows %s: %w", table.Name, err)
	}
	return out, nil
}

// Apply writes a sheet edit into the store: the row is updated in place, or
// inserted with its key if it no longer exists. Values map store column names
// to typed values; nil means NULL, and a column absent from the map keeps its
// stored value. Apply deliberately skips audit capture so an accepted edit
// does not echo straight back to the sheet as a push.
func (r *RowRepository) Apply(ctx context.Context, table schema.Table, id int64, values map[string]interface{}) error {
	sets := make([]string, 0, len(table.Columns)-1)
	args := make([]interface{}, 0, len(table.Columns))
	for _, col := range table.Columns[1:] {
		v, ok := values[col.Name]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col.Name, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	update := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d`,
		table.Name, strings.Join(sets, ", "), table.PK().Name, len(args))

	res, err := r.db.ExecContext(ctx, update, args...)
	if err != nil {
		return fmt.Errorf("apply %s/%d: %w", table.Name, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply %s/%d: %w", table.Name, id, err)
	}
	if affected > 0 {
		return nil
	}

	cols := table.ColumnNames()
	placeholders := make([]string, len(cols))
	insertArgs := make([]interface{}, len(cols))
	insertArgs[0] = id
	placeholders[0] = "$1"
	for i, col := range table.Columns[1:] {
		insertArgs[i+1] = values[col.Name]
		placeholders[i+1] = fmt.Sprintf("$%d", i+2)
	}
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := r.db.ExecContext(ctx, insert, insertArgs...); err != nil {
		return fmt.Errorf("apply %s/%d: %w", table.Name, id, err)
	}
	return nil
}
