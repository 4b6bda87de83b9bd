package dto

import "github.com/atelier-ops/workshop-api/internal/models"

// RegisterEmployeeRequest payload for self-registration. The record lands in
// PENDING until a manager reviews it.
type RegisterEmployeeRequest struct {
	TgID int64       `json:"tgId" validate:"required"`
	Name string      `json:"name" validate:"required"`
	Job  models.Role `json:"job" validate:"required,oneof=CUTTER SEAMSTRESS CONTROLLER MANAGER"`
}

// ReviewEmployeeRequest captures a manager's decision on a pending signup.
type ReviewEmployeeRequest struct {
	Approve bool `json:"approve"`
}
