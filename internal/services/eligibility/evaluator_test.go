package eligibility

import (
	"testing"
	"time"

	"resguard/internal/models"
	"resguard/internal/services/stripeaccount"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

var capableAccount = stripeaccount.AccountStatus{DetailsSubmitted: true, ChargesEnabled: true}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		cfg          models.GuaranteeConfig
		account      stripeaccount.AccountStatus
		reservation  Reservation
		wantRequired bool
		wantReason   string
	}{
		{
			name:         "disabled config never requires",
			cfg:          models.GuaranteeConfig{Enabled: false, StripeAccountID: "acct_1"},
			account:      capableAccount,
			reservation:  Reservation{PartySize: 10, Date: date("2026-08-29")},
			wantRequired: false,
			wantReason:   ReasonDisabled,
		},
		{
			name: "party below min_persons threshold",
			cfg: models.GuaranteeConfig{
				Enabled: true, ApplyToRule: models.ApplyToMinPersons,
				MinPersons: 4, StripeAccountID: "acct_1",
			},
			account:      capableAccount,
			reservation:  Reservation{PartySize: 2, Date: date("2026-08-29")},
			wantRequired: false,
			wantReason:   ReasonMinPersonsNotMet,
		},
		{
			name: "party meeting min_persons threshold",
			cfg: models.GuaranteeConfig{
				Enabled: true, ApplyToRule: models.ApplyToMinPersons,
				MinPersons: 4, StripeAccountID: "acct_1",
			},
			account:      capableAccount,
			reservation:  Reservation{PartySize: 6, Date: date("2026-08-25")},
			wantRequired: true,
			wantReason:   ReasonEligible,
		},
		{
			name: "no connected account",
			cfg: models.GuaranteeConfig{
				Enabled: true, ApplyToRule: models.ApplyToAll,
			},
			reservation:  Reservation{PartySize: 2, Date: date("2026-08-29")},
			wantRequired: false,
			wantReason:   ReasonNoStripeAccount,
		},
		{
			name: "account not charge capable",
			cfg: models.GuaranteeConfig{
				Enabled: true, ApplyToRule: models.ApplyToAll, StripeAccountID: "acct_1",
			},
			account:      stripeaccount.AccountStatus{DetailsSubmitted: true, ChargesEnabled: false},
			reservation:  Reservation{PartySize: 2, Date: date("2026-08-29")},
			wantRequired: false,
			wantReason:   ReasonStripeAccountNotReady,
		},
		{
			name: "apply to all with capable account",
			cfg: models.GuaranteeConfig{
				Enabled: true, ApplyToRule: models.ApplyToAll, StripeAccountID: "acct_1",
			},
			account:      capableAccount,
			reservation:  Reservation{PartySize: 1, Date: date("2026-08-26")},
			wantRequired: true,
			wantReason:   ReasonEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(&tt.cfg, tt.account, tt.reservation)
			assert.Equal(t, tt.wantRequired, got.Required)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

// The weekend rule treats Friday, Saturday and Sunday as weekend days;
// Monday through Thursday are not.
func TestEvaluateWeekendRule(t *testing.T) {
	cfg := models.GuaranteeConfig{
		Enabled: true, ApplyToRule: models.ApplyToWeekend, StripeAccountID: "acct_1",
	}

	weekendDays := []string{
		"2026-08-28", // Friday
		"2026-08-29", // Saturday
		"2026-08-30", // Sunday
	}
	for _, d := range weekendDays {
		got := Evaluate(&cfg, capableAccount, Reservation{PartySize: 2, Date: date(d)})
		assert.True(t, got.Required, "expected %s to require a guarantee", d)
	}

	weekDays := []string{
		"2026-08-24", // Monday
		"2026-08-25", // Tuesday
		"2026-08-26", // Wednesday
		"2026-08-27", // Thursday
	}
	for _, d := range weekDays {
		got := Evaluate(&cfg, capableAccount, Reservation{PartySize: 2, Date: date(d)})
		assert.False(t, got.Required, "expected %s not to require a guarantee", d)
		assert.Equal(t, ReasonNotWeekend, got.Reason)
	}
}

// Same inputs, same answer: evaluation has no hidden state.
func TestEvaluateDeterminism(t *testing.T) {
	cfg := models.GuaranteeConfig{
		Enabled: true, ApplyToRule: models.ApplyToMinPersons,
		MinPersons: 4, StripeAccountID: "acct_1",
	}
	r := Reservation{PartySize: 2, Date: date("2026-08-29")}

	first := Evaluate(&cfg, capableAccount, r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(&cfg, capableAccount, r))
	}
}
