package models

import (
	"time"
)

// SessionStatus is the closed set of guarantee session states.
type SessionStatus string

const (
	StatusPending       SessionStatus = "pending"
	StatusValidated     SessionStatus = "validated"
	StatusCompleted     SessionStatus = "completed"
	StatusCancelled     SessionStatus = "cancelled"
	StatusNoshowCharged SessionStatus = "noshow_charged"
	StatusNoshowFailed  SessionStatus = "noshow_failed"
)

// legalTransitions encodes the lifecycle state machine. Anything not listed
// here is an illegal transition and must be rejected by the engine.
var legalTransitions = map[SessionStatus][]SessionStatus{
	StatusPending:   {StatusValidated, StatusCancelled},
	StatusValidated: {StatusCompleted, StatusNoshowCharged, StatusNoshowFailed},
}

// CanTransition reports whether moving from one status to another is legal.
func (s SessionStatus) CanTransition(to SessionStatus) bool {
	for _, next := range legalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a member of the closed set.
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusCompleted, StatusCancelled,
		StatusNoshowCharged, StatusNoshowFailed:
		return true
	}
	return false
}

// PendingExpiry is how long a pending session stays actionable on the
// public endpoints before being reported as gone.
const PendingExpiry = 7 * 24 * time.Hour

// GuaranteeSession tracks one reservation's card-guarantee lifecycle.
// Sessions are never hard-deleted; charged and failed sessions are the
// audit trail for penalty charges.
type GuaranteeSession struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	PublicID   string `gorm:"uniqueIndex;not null" json:"id"`
	MerchantID uint   `gorm:"not null;uniqueIndex:idx_merchant_reservation,priority:1" json:"merchant_id"`
	// ReservationID is the caller-supplied dedup key; unique per merchant.
	ReservationID string `gorm:"not null;uniqueIndex:idx_merchant_reservation,priority:2" json:"reservation_id"`

	// Customer snapshot.
	CustomerName  string `gorm:"not null" json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	PartySize     int    `gorm:"not null" json:"party_size"`

	// Reservation snapshot.
	Date            string `gorm:"not null" json:"date"` // YYYY-MM-DD
	Time            string `gorm:"not null" json:"time"` // HH:MM
	DurationMinutes int    `gorm:"default:90" json:"duration_minutes"`
	Timezone        string `gorm:"default:'Europe/Paris'" json:"timezone"`

	Status SessionStatus `gorm:"not null;default:'pending';index" json:"status"`

	// Stripe linkage on the connected account.
	CheckoutSessionID string `gorm:"index" json:"-"`
	SetupIntentID     string `json:"-"`
	PaymentMethodID   string `json:"-"`
	StripeCustomerID  string `json:"-"`

	// PenaltyAmount is snapshotted from the config at creation time, in
	// major units per person. Charges use this value, never the live config.
	PenaltyAmount int64  `gorm:"not null" json:"penalty_amount"`
	Currency      string `gorm:"default:'eur'" json:"currency"`

	ReminderCount  int        `gorm:"default:0" json:"reminder_count"`
	LastReminderAt *time.Time `json:"last_reminder_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	ChargedAt   *time.Time `json:"charged_at,omitempty"`
}

// PenaltyAmountMinor returns the total penalty for the whole party in minor
// currency units, as expected by the payment processor.
func (s *GuaranteeSession) PenaltyAmountMinor() int64 {
	return s.PenaltyAmount * int64(s.PartySize) * 100
}

// Expired reports whether a pending session is past the public expiry window.
func (s *GuaranteeSession) Expired(now time.Time) bool {
	return s.Status == StatusPending && now.Sub(s.CreatedAt) > PendingExpiry
}

// ReservationStart resolves the reservation's start instant in its timezone.
func (s *GuaranteeSession) ReservationStart() (time.Time, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.Time, loc)
}

// ReservationEnd is the start plus the reservation duration.
func (s *GuaranteeSession) ReservationEnd() (time.Time, error) {
	start, err := s.ReservationStart()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(s.DurationMinutes) * time.Minute), nil
}
