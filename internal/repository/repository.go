package repository

import "database/sql"

// ErrNoRows is returned when a lookup or a guarded update matches nothing.
// Aliased so callers can test with errors.Is without importing database/sql.
var ErrNoRows = sql.ErrNoRows
