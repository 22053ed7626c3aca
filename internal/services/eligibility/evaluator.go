// Package eligibility decides whether a reservation requires a card
// guarantee. Evaluation is pure: no store access, no processor calls.
package eligibility

import (
	"time"

	"resguard/internal/models"
	"resguard/internal/services/stripeaccount"
)

// Machine-readable reasons returned with the decision.
const (
	ReasonEligible              = "eligible"
	ReasonDisabled              = "disabled"
	ReasonMinPersonsNotMet      = "min_persons_not_met"
	ReasonNotWeekend            = "not_weekend"
	ReasonNoStripeAccount       = "no_stripe_account"
	ReasonStripeAccountNotReady = "stripe_account_not_ready"
)

// Reservation are the attributes the rules look at.
type Reservation struct {
	PartySize int
	Date      time.Time
}

// Result is the eligibility decision.
type Result struct {
	Required bool   `json:"required"`
	Reason   string `json:"reason"`
}

// Evaluate applies the merchant's rules in order. The account status is
// passed in by the caller (probed only when the config is enabled).
//
// The weekend rule counts Friday, Saturday and Sunday as weekend. Friday
// is intentional: Friday-evening reservations carry the same no-show risk
// as the weekend proper.
func Evaluate(cfg *models.GuaranteeConfig, account stripeaccount.AccountStatus, r Reservation) Result {
	if !cfg.Enabled {
		return Result{Required: false, Reason: ReasonDisabled}
	}

	if cfg.ApplyToRule == models.ApplyToMinPersons && r.PartySize < cfg.MinPersons {
		return Result{Required: false, Reason: ReasonMinPersonsNotMet}
	}

	if cfg.ApplyToRule == models.ApplyToWeekend && !isWeekend(r.Date.Weekday()) {
		return Result{Required: false, Reason: ReasonNotWeekend}
	}

	if !cfg.HasStripeAccount() {
		return Result{Required: false, Reason: ReasonNoStripeAccount}
	}
	if !account.ChargeCapable() {
		return Result{Required: false, Reason: ReasonStripeAccountNotReady}
	}

	return Result{Required: true, Reason: ReasonEligible}
}

func isWeekend(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday || d == time.Sunday
}
