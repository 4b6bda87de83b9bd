package models

import (
	"strconv"
	"time"
)

// BatchStatus is the lifecycle state of a batch of cut pieces.
type BatchStatus string

const (
	BatchCreated        BatchStatus = "CREATED"
	BatchSewing         BatchStatus = "SEWING"
	BatchSewn           BatchStatus = "SEWN"
	BatchDone           BatchStatus = "DONE"
	BatchDefect         BatchStatus = "DEFECT"
	BatchReworkDefect   BatchStatus = "REWORK_DEFECT"
	BatchReworkStarted  BatchStatus = "REWORK_STARTED"
	BatchReworkFinished BatchStatus = "REWORK_FINISHED"
)

// AllBatchStatuses enumerates every legal status value in lifecycle order.
var AllBatchStatuses = []BatchStatus{
	BatchCreated, BatchSewing, BatchSewn, BatchDone, BatchDefect,
	BatchReworkDefect, BatchReworkStarted, BatchReworkFinished,
}

// Assigned reports whether a batch in this status must carry a seamstress.
// Only CREATED batches are unassigned.
func (s BatchStatus) Assigned() bool {
	return s != BatchCreated
}

// BatchType distinguishes production batches from one-off samples.
type BatchType string

const (
	BatchRegular BatchType = "REGULAR"
	BatchSample  BatchType = "SAMPLE"
)

// ReviewDecision is the quality controller's verdict on a sewn batch.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "APPROVE"
	DecisionReject  ReviewDecision = "REJECT"
	DecisionRemake  ReviewDecision = "REMAKE"
)

// Batch is a unit of cut fabric pieces moving through production.
type Batch struct {
	BatchID      int64       `db:"batch_id" json:"batch_id"`
	ProjectNm    string      `db:"project_nm" json:"project_nm"`
	ProductNm    string      `db:"product_nm" json:"product_nm"`
	Color        string      `db:"color" json:"color"`
	Size         string      `db:"size" json:"size"`
	Quantity     int         `db:"quantity" json:"quantity"`
	PartsCount   int         `db:"parts_count" json:"parts_count"`
	CutterID     int64       `db:"cutter_id" json:"cutter_id"`
	SeamstressID *int64      `db:"seamstress_id" json:"seamstress_id,omitempty"`
	ControllerID *int64      `db:"controller_id" json:"controller_id,omitempty"`
	Status       BatchStatus `db:"status" json:"status"`
	Type         BatchType   `db:"type" json:"type"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	SewStartDttm *time.Time  `db:"sew_start_dttm" json:"sew_start_dttm,omitempty"`
	SewEndDttm   *time.Time  `db:"sew_end_dttm" json:"sew_end_dttm,omitempty"`
	ControlDttm  *time.Time  `db:"control_dttm" json:"control_dttm,omitempty"`
}

// BatchFilter captures filtering criteria for listing batches.
type BatchFilter struct {
	Status       []BatchStatus
	SeamstressID *int64
	CutterID     *int64
	Page         int
	PageSize     int
}

// SummaryLines renders the label / QR payload text for the batch.
func (b *Batch) SummaryLines() []string {
	return []string{
		"ID: " + strconv.FormatInt(b.BatchID, 10),
		"Project: " + b.ProjectNm,
		"Product: " + b.ProductNm,
		"Color: " + b.Color,
		"Size: " + b.Size,
		"Quantity: " + strconv.Itoa(b.Quantity),
	}
}
