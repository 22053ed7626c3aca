package stripeaccount

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/account"
	"github.com/stripe/stripe-go/v72/accountlink"
	checkoutsession "github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/customer"
	"github.com/stripe/stripe-go/v72/paymentintent"
	"github.com/stripe/stripe-go/v72/setupintent"
)

// stripeProcessor implements Processor on top of stripe-go. Connected
// account calls set the Stripe-Account header via SetStripeAccount.
type stripeProcessor struct{}

// NewStripeProcessor configures the stripe-go client with the platform
// secret key and returns the production Processor.
func NewStripeProcessor(secretKey string) Processor {
	stripe.Key = secretKey
	return &stripeProcessor{}
}

func (p *stripeProcessor) CreateAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create connected account: %w", err)
	}
	return acct.ID, nil
}

func (p *stripeProcessor) GetAccount(ctx context.Context, accountID string) (AccountStatus, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return AccountStatus{}, fmt.Errorf("failed to retrieve account %s: %w", accountID, err)
	}
	return AccountStatus{
		DetailsSubmitted: acct.DetailsSubmitted,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
	}, nil
}

func (p *stripeProcessor) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx
	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create onboarding link: %w", err)
	}
	return link.URL, nil
}

func (p *stripeProcessor) CreateCustomer(ctx context.Context, accountID, name, email string) (string, error) {
	params := &stripe.CustomerParams{
		Name: stripe.String(name),
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.Context = ctx
	params.SetStripeAccount(accountID)
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return cust.ID, nil
}

func (p *stripeProcessor) CreateSetupCheckout(ctx context.Context, in SetupCheckoutInput) (*SetupCheckout, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSetup)),
		Customer:           stripe.String(in.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
		ClientReferenceID:  stripe.String(in.Reference),
	}
	params.Context = ctx
	params.SetStripeAccount(in.AccountID)
	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &SetupCheckout{ID: sess.ID, URL: sess.URL}, nil
}

func (p *stripeProcessor) GetCheckout(ctx context.Context, accountID, checkoutSessionID string) (*CheckoutInfo, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)
	sess, err := checkoutsession.Get(checkoutSessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	info := &CheckoutInfo{ID: sess.ID}
	if sess.SetupIntent != nil {
		info.SetupIntentID = sess.SetupIntent.ID
		// Completion is judged by the setup intent, not the webhook payload.
		siParams := &stripe.SetupIntentParams{}
		siParams.Context = ctx
		siParams.SetStripeAccount(accountID)
		si, err := setupintent.Get(sess.SetupIntent.ID, siParams)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve setup intent: %w", err)
		}
		info.Complete = si.Status == stripe.SetupIntentStatusSucceeded
	}
	return info, nil
}

func (p *stripeProcessor) GetSetupIntent(ctx context.Context, accountID, setupIntentID string) (*SetupIntentInfo, error) {
	params := &stripe.SetupIntentParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)
	si, err := setupintent.Get(setupIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve setup intent: %w", err)
	}
	info := &SetupIntentInfo{}
	if si.PaymentMethod != nil {
		info.PaymentMethodID = si.PaymentMethod.ID
	}
	if si.Customer != nil {
		info.CustomerID = si.Customer.ID
	}
	return info, nil
}

func (p *stripeProcessor) ChargeOffSession(ctx context.Context, in ChargeInput) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.Amount),
		Currency:      stripe.String(in.Currency),
		Customer:      stripe.String(in.CustomerID),
		PaymentMethod: stripe.String(in.PaymentMethodID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(in.Description),
	}
	params.Context = ctx
	params.SetStripeAccount(in.AccountID)
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("off-session charge failed: %w", err)
	}
	return pi.ID, nil
}

// FailureReason extracts a stable, merchant-readable reason from a
// processor error ("card_declined", "authentication_required", ...).
func FailureReason(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.DeclineCode != "" {
			return string(stripeErr.DeclineCode)
		}
		if stripeErr.Code != "" {
			return string(stripeErr.Code)
		}
		return stripeErr.Msg
	}
	return err.Error()
}
