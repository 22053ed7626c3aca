package guarantee

import (
	"time"

	"resguard/internal/models"
	"resguard/internal/services/notification"
)

// CreateSessionInput is the automation-facing request to open a guarantee
// session for a reservation.
type CreateSessionInput struct {
	ReservationID   string `json:"reservation_id" validate:"required"`
	CustomerName    string `json:"customer_name" validate:"required"`
	CustomerEmail   string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string `json:"customer_phone"`
	PartySize       int    `json:"party_size" validate:"required,min=1"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=15"`
	Timezone        string `json:"timezone"`
}

// CreateSessionResult reports what happened: the guarantee may not be
// required at all, the session may already exist, or a fresh session with
// a customer-facing URL was opened.
type CreateSessionResult struct {
	Required      bool                     `json:"required"`
	Reason        string                   `json:"reason,omitempty"`
	AlreadyExists bool                     `json:"already_exists,omitempty"`
	SessionID     string                   `json:"session_id,omitempty"`
	GuaranteeURL  string                   `json:"guarantee_url,omitempty"`
	Session       *models.GuaranteeSession `json:"session,omitempty"`
	Notifications *notification.Result     `json:"notifications,omitempty"`
}

// CheckStatusResult is the automation-facing config/eligibility summary.
// Enabled already reflects the capability downgrade: a config switched on
// without a charge-capable account reads as disabled.
type CheckStatusResult struct {
	Enabled       bool   `json:"enabled"`
	Reason        string `json:"reason,omitempty"`
	PenaltyAmount int64  `json:"penalty_amount"`
	Currency      string `json:"currency"`
	ApplyToRule   string `json:"apply_to_rule"`
	MinPersons    int    `json:"min_persons"`
}

// PublicStatusView is the non-sensitive payload for the public widget.
type PublicStatusView struct {
	Available     bool   `json:"available"`
	MerchantName  string `json:"merchant_name"`
	LogoURL       string `json:"logo_url,omitempty"`
	PenaltyAmount int64  `json:"penalty_amount"`
	Currency      string `json:"currency"`
	ApplyToRule   string `json:"apply_to_rule"`
	MinPersons    int    `json:"min_persons,omitempty"`
}

// PublicSessionView is the customer-facing session summary.
type PublicSessionView struct {
	SessionID     string               `json:"session_id"`
	Status        models.SessionStatus `json:"status"`
	MerchantName  string               `json:"merchant_name"`
	LogoURL       string               `json:"logo_url,omitempty"`
	Address       string               `json:"address,omitempty"`
	CustomerName  string               `json:"customer_name"`
	PartySize     int                  `json:"party_size"`
	Date          string               `json:"date"`
	Time          string               `json:"time"`
	PenaltyAmount int64                `json:"penalty_amount"`
	Currency      string               `json:"currency"`
}

// DashboardResult buckets a merchant's sessions for the dashboard.
type DashboardResult struct {
	Period         string                    `json:"period"`
	Pending        []models.GuaranteeSession `json:"pending"`
	Validated      []models.GuaranteeSession `json:"validated"`
	Today          []models.GuaranteeSession `json:"today"`
	Total          int                       `json:"total"`
	ValidationRate float64                   `json:"validation_rate"`
}

// Outcome is the staff-reported attendance result.
type Outcome string

const (
	OutcomeAttended Outcome = "attended"
	OutcomeNoshow   Outcome = "noshow"
)

// OutcomeResult reports the transition triggered by an attendance marking.
// For no-shows, Charged and Error describe the processor outcome; the
// charge attempt is persisted either way.
type OutcomeResult struct {
	Status  models.SessionStatus `json:"status"`
	Charged bool                 `json:"charged"`
	Amount  int64                `json:"amount,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// ResendResult carries the fresh checkout URL and notification outcome.
type ResendResult struct {
	GuaranteeURL  string              `json:"guarantee_url"`
	ReminderCount int                 `json:"reminder_count"`
	Notifications notification.Result `json:"notifications"`
}

// SessionDetails is the full session plus its charge history, served to
// the booking workflow.
type SessionDetails struct {
	Session *models.GuaranteeSession `json:"session"`
	Charges []models.NoshowCharge    `json:"charges"`
}

// ValidationResult is the webhook-processing outcome.
type ValidationResult struct {
	Already       bool                `json:"already,omitempty"`
	SessionID     string              `json:"session_id"`
	Notifications notification.Result `json:"notifications"`
	ValidatedAt   *time.Time          `json:"validated_at,omitempty"`
}
