package stripeaccount

import (
	"context"
)

// AccountStatus are the capability flags of a connected account.
type AccountStatus struct {
	DetailsSubmitted bool `json:"details_submitted"`
	ChargesEnabled   bool `json:"charges_enabled"`
	PayoutsEnabled   bool `json:"payouts_enabled"`
}

// ChargeCapable reports whether the account can receive card-setup
// sessions and off-session charges.
func (s AccountStatus) ChargeCapable() bool {
	return s.DetailsSubmitted && s.ChargesEnabled
}

// SetupCheckoutInput describes a setup-mode checkout session to open on a
// connected account. The customer is created up front so the stored card
// is always attached to a customer we can charge later.
type SetupCheckoutInput struct {
	AccountID     string
	CustomerID    string
	CustomerEmail string
	Reference     string
	SuccessURL    string
	CancelURL     string
}

// SetupCheckout is the processor-hosted card collection flow.
type SetupCheckout struct {
	ID  string
	URL string
}

// CheckoutInfo is the re-verified state of a checkout session.
type CheckoutInfo struct {
	ID            string
	Complete      bool
	SetupIntentID string
}

// SetupIntentInfo carries the stored payment method after validation.
type SetupIntentInfo struct {
	PaymentMethodID string
	CustomerID      string
}

// ChargeInput describes an off-session charge against a stored card on a
// connected account. Amount is in minor currency units.
type ChargeInput struct {
	AccountID       string
	CustomerID      string
	PaymentMethodID string
	Amount          int64
	Currency        string
	Description     string
}

// Processor abstracts the payment processor. The production implementation
// is backed by stripe-go; tests substitute a mock.
type Processor interface {
	CreateAccount(ctx context.Context, email string) (string, error)
	GetAccount(ctx context.Context, accountID string) (AccountStatus, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreateCustomer(ctx context.Context, accountID, name, email string) (string, error)
	CreateSetupCheckout(ctx context.Context, in SetupCheckoutInput) (*SetupCheckout, error)
	GetCheckout(ctx context.Context, accountID, checkoutSessionID string) (*CheckoutInfo, error)
	GetSetupIntent(ctx context.Context, accountID, setupIntentID string) (*SetupIntentInfo, error)
	ChargeOffSession(ctx context.Context, in ChargeInput) (string, error)
}
