package models

import "time"

// PaymentStatus represents the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
)

// Valid returns true when the status is a supported value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusUnpaid, PaymentStatusPartial:
		return true
	default:
		return false
	}
}

// Payment is a fee record linked to a student.
type Payment struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"studentId"`
	Amount      float64       `db:"amount" json:"amount"`
	Status      PaymentStatus `db:"status" json:"status"`
	Description string        `db:"description" json:"description"`
	PaymentDate time.Time     `db:"payment_date" json:"paymentDate"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// PaymentRecord extends the payment with the student's display name.
type PaymentRecord struct {
	Payment
	StudentName string `db:"student_name" json:"studentName"`
}

// PaymentFilter scopes payment listing.
type PaymentFilter struct {
	StudentID string
	Status    PaymentStatus
	DateFrom  *time.Time
	DateTo    *time.Time
}
