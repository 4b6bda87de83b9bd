package models

import (
	"strings"
	"time"
)

// Role determines which workflow actions an employee may invoke.
type Role string

const (
	RoleCutter     Role = "CUTTER"
	RoleSeamstress Role = "SEAMSTRESS"
	RoleController Role = "CONTROLLER"
	RoleManager    Role = "MANAGER"
)

// Valid reports whether the role is one of the known workshop roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCutter, RoleSeamstress, RoleController, RoleManager:
		return true
	}
	return false
}

// EmployeeStatus tracks the registration approval state.
type EmployeeStatus string

const (
	EmployeePending  EmployeeStatus = "PENDING"
	EmployeeApproved EmployeeStatus = "APPROVED"
)

// NormalizeEmployeeStatus resolves the approval spellings that accumulated
// in older records, including the misspelt and localized ones, to their
// canonical value.
func NormalizeEmployeeStatus(raw string) (EmployeeStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "APPROVED", "APPOVED", "ОДОБРЕНО":
		return EmployeeApproved, true
	case "PENDING", "ОЖИДАЕТ":
		return EmployeePending, true
	default:
		return "", false
	}
}

// Employee is a registered workshop worker keyed by the external chat id.
type Employee struct {
	TgID      int64          `db:"tg_id" json:"tg_id"`
	Name      string         `db:"name" json:"name"`
	Job       Role           `db:"job" json:"job"`
	Status    EmployeeStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Job    *Role
	Status *EmployeeStatus
}
