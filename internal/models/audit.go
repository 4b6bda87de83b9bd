package models

import (
	"encoding/json"
	"time"
)

// AuditAction is the kind of row change captured by an audit record.
type AuditAction string

const (
	AuditInsert AuditAction = "INSERT"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditEntry is one pending change queued for spreadsheet projection.
// Audit tables are transient queues: entries are deleted once the
// corresponding sheet write has been acknowledged.
type AuditEntry struct {
	AuditID    int64           `db:"audit_id" json:"audit_id"`
	Action     AuditAction     `db:"action" json:"action"`
	RowID      int64           `db:"row_id" json:"row_id"`
	Snapshot   json.RawMessage `db:"snapshot" json:"snapshot"`
	RecordedAt time.Time       `db:"recorded_at" json:"recorded_at"`
}
