package dto

import "github.com/atelier-ops/workshop-api/internal/models"

// CreatePaymentRequest payload for recording a payout or fine. Amount is
// signed so a fine can be stored as a negative value.
type CreatePaymentRequest struct {
	EmployeeID int64              `json:"employeeId" validate:"required"`
	Amount     int64              `json:"amount" validate:"required"`
	Type       models.PaymentType `json:"type" validate:"required,oneof=SALARY BONUS FINE"`
}
