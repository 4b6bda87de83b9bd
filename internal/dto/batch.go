package dto

import "github.com/atelier-ops/workshop-api/internal/models"

// CreateBatchRequest payload for the cutter's batch wizard.
type CreateBatchRequest struct {
	ProjectNm  string           `json:"projectNm" validate:"required"`
	ProductNm  string           `json:"productNm" validate:"required"`
	Color      string           `json:"color" validate:"required"`
	Size       string           `json:"size" validate:"required"`
	Quantity   int              `json:"quantity" validate:"required,gt=0"`
	PartsCount int              `json:"partsCount" validate:"required,gt=0"`
	Type       models.BatchType `json:"type" validate:"omitempty,oneof=REGULAR SAMPLE"`
}

// ReviewBatchRequest captures the controller's verdict on a sewn batch.
type ReviewBatchRequest struct {
	Decision models.ReviewDecision `json:"decision" validate:"required,oneof=APPROVE REJECT REMAKE"`
}

// ScanBatchRequest carries the decoded text of a scanned label QR code.
type ScanBatchRequest struct {
	Payload string `json:"payload" validate:"required"`
}