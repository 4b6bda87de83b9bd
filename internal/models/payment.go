package models

import "time"

// PaymentType classifies a payment record.
type PaymentType string

const (
	PaymentSalary PaymentType = "SALARY"
	PaymentBonus  PaymentType = "BONUS"
	PaymentFine   PaymentType = "FINE"
)

// Payment is an append-only compensation record. Amount is signed: a negative
// value records a penalty.
type Payment struct {
	PaymentID   int64       `db:"payment_id" json:"payment_id"`
	EmployeeID  int64       `db:"employee_id" json:"employee_id"`
	Amount      int64       `db:"amount" json:"amount"`
	Type        PaymentType `db:"type" json:"type"`
	PaymentDate time.Time   `db:"payment_date" json:"payment_date"`
}
