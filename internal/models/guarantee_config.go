package models

import (
	"time"
)

// Eligibility rules for ApplyToRule.
const (
	ApplyToAll        = "all"
	ApplyToMinPersons = "min_persons"
	ApplyToWeekend    = "weekend"
)

// GuaranteeConfig is the per-merchant guarantee configuration.
//
// Enabled=true is only meaningful with a charge-capable connected account;
// readers must downgrade to disabled (with a warning) when that invariant
// does not hold.
type GuaranteeConfig struct {
	ID         uint `gorm:"primarykey" json:"id"`
	MerchantID uint `gorm:"uniqueIndex;not null" json:"merchant_id"`

	Enabled bool `gorm:"default:false" json:"enabled"`
	// PenaltyAmount is the no-show penalty per person, in major currency
	// units (30 means EUR 30.00).
	PenaltyAmount          int64  `gorm:"default:0" json:"penalty_amount"`
	Currency               string `gorm:"default:'eur'" json:"currency"`
	CancellationDelayHours int    `gorm:"default:24" json:"cancellation_delay_hours"`
	ApplyToRule            string `gorm:"default:'all'" json:"apply_to_rule"`
	MinPersons             int    `gorm:"default:0" json:"min_persons"`

	// StripeAccountID is empty until the merchant completed onboarding.
	StripeAccountID string `json:"stripe_account_id,omitempty"`

	// Branding used in customer-facing pages and notifications.
	DisplayName  string `json:"display_name"`
	LogoURL      string `json:"logo_url"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`

	// Notification toggles.
	AutoSendEmailOnCreate     bool `gorm:"default:true" json:"auto_send_email_on_create"`
	AutoSendSMSOnCreate       bool `gorm:"default:false" json:"auto_send_sms_on_create"`
	AutoSendEmailOnValidation bool `gorm:"default:true" json:"auto_send_email_on_validation"`
	AutoSendSMSOnValidation   bool `gorm:"default:false" json:"auto_send_sms_on_validation"`
	SMSEnabled                bool `gorm:"default:false" json:"sms_enabled"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasStripeAccount reports whether a connected account id is stored.
func (c *GuaranteeConfig) HasStripeAccount() bool {
	return c.StripeAccountID != ""
}
