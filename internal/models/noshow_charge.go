package models

import (
	"time"
)

// NoshowCharge outcomes.
const (
	ChargeSucceeded = "succeeded"
	ChargeFailed    = "failed"
)

// NoshowCharge records one penalty charge attempt. Rows are append-only:
// every attempt creates a new row, successful or not, and no row is ever
// updated afterwards.
type NoshowCharge struct {
	ID                 uint   `gorm:"primarykey" json:"id"`
	GuaranteeSessionID string `gorm:"not null;index" json:"guarantee_session_id"`
	MerchantID         uint   `gorm:"not null;index" json:"merchant_id"`
	// PaymentIntentID is empty when the processor refused the charge.
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	// Amount is in minor currency units.
	Amount        int64     `gorm:"not null" json:"amount"`
	Currency      string    `gorm:"not null" json:"currency"`
	Status        string    `gorm:"not null" json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
