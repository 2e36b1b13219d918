package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks a payment through billing.
type PaymentStatus string

// Payment statuses. REFUNDED exists in the data model but no operation produces it.
const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the fee owed for one enrollment.
type Payment struct {
	ID           int64           `db:"id" json:"id"`
	EnrollmentID int64           `db:"enrollment_id" json:"enrollment_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate  time.Time       `db:"payment_date" json:"payment_date"`
	Method       *string         `db:"payment_method" json:"payment_method,omitempty"`
	Status       PaymentStatus   `db:"status" json:"status"`
}
