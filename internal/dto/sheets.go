package dto

// SheetEditNotification is the payload the spreadsheet script posts when a
// human edits a mirrored sheet. EntireRow carries cell values positionally in
// sheet column order, primary key first. RowID stays a string because the
// script sends whatever sits in the key cell, including nothing at all.
// NumRows is unvalidated here so any off-by-one selection, zero included,
// reaches the puller and triggers its mass edit alert.
type SheetEditNotification struct {
	SheetName string   `json:"sheet_name" validate:"required"`
	RowID     string   `json:"row_id"`
	NumRows   int      `json:"num_rows"`
	EntireRow []string `json:"entire_row"`
}

// ResyncRequest limits a manual reconciliation to selected tables. An empty
// list means every mirrored table.
type ResyncRequest struct {
	Tables []string `json:"tables" validate:"omitempty,dive,oneof=employees batches remakes payments"`
}

// ResyncReport summarizes one reconciliation run.
type ResyncReport struct {
	Updated int `json:"updated"`
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}
