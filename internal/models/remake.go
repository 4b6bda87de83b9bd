package models

import "time"

// RemakeStatus is the lifecycle state of an equipment repair ticket.
type RemakeStatus string

const (
	RemakeCreated    RemakeStatus = "CREATED"
	RemakeInProgress RemakeStatus = "IN_PROGRESS"
	RemakeDone       RemakeStatus = "DONE"
)

// RemakeFilter captures filtering criteria for listing repair tickets.
type RemakeFilter struct {
	Statuses    []RemakeStatus
	ApplicantID *int64
}

// Remake is an equipment repair request raised by any employee.
type Remake struct {
	RemakeID    int64        `db:"remake_id" json:"remake_id"`
	EquipmentNm string       `db:"equipment_nm" json:"equipment_nm"`
	Description string       `db:"description" json:"description"`
	ApplicantID int64        `db:"applicant_id" json:"applicant_id"`
	Status      RemakeStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}
