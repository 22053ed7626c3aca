package queue

import (
	"time"
)

// Lifecycle event types published to the guarantee.events queue.
const (
	EventSessionValidated = "guarantee.validated"
	EventNoshowCharged    = "guarantee.noshow_charged"
	EventNoshowFailed     = "guarantee.noshow_failed"
)

// Event is the message body for guarantee lifecycle events. Consumers are
// informational (reporting, audit); nothing in the lifecycle depends on
// a consumer seeing these.
type Event struct {
	Type          string `json:"type"`
	SessionID     string `json:"session_id"`
	MerchantID    uint   `json:"merchant_id"`
	ReservationID string `json:"reservation_id"`
	// Amount is set on charge events, in minor currency units.
	Amount     int64     `json:"amount,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
