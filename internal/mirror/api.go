// Package mirror keeps the spreadsheet projection of the store in step with
// the audit queues (push), applies human sheet edits back to the store
// (pull) and repairs drift between the two (reconcile).
package mirror

import "context"

// Validation rule types understood by the sheet bridge.
const (
	RuleNumberBetween = "NUMBER_BETWEEN"
	RuleDateBefore    = "DATE_BEFORE"
	RuleOneOfList     = "ONE_OF_LIST"
)

// ValidationRule restricts what a human may type into one sheet column.
// ColumnIndex is zero-based.
type ValidationRule struct {
	ColumnIndex int      `json:"column_index"`
	Type        string   `json:"type"`
	Values      []string `json:"values"`
}

// API is the minimal spreadsheet surface the mirror needs. Row indexes are
// 1-based sheet rows; row 1 is the header. The production implementation
// talks to the sheet bridge over HTTP, tests substitute an in-memory fake.
type API interface {
	EnsureSheet(ctx context.Context, title string) error
	SetHeader(ctx context.Context, title string, headers []string) error
	SetValidation(ctx context.Context, title string, rules []ValidationRule) error
	FormatColumns(ctx context.Context, title string, columns []int, pattern string) error
	GetRows(ctx context.Context, title string) ([][]string, error)
	UpdateRow(ctx context.Context, title string, rowIndex int, values []interface{}) error
	AppendRow(ctx context.Context, title string, values []interface{}) error
	DeleteRow(ctx context.Context, title string, rowIndex int) error
}

// Metrics receives mirror activity counters. Implementations must be safe
// for concurrent use; a nil Metrics disables reporting.
type Metrics interface {
	PushProcessed(table string, success bool)
	PullProcessed(success bool)
	ProjectionObserved(seconds float64)
}
