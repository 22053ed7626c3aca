// Package stripeaccount manages each merchant's connected payment account:
// onboarding, capability probing and disconnection.
package stripeaccount

import (
	"context"
	"fmt"

	"resguard/internal/models"

	"github.com/sirupsen/logrus"
)

// ConfigStore is the slice of the config repository this service needs.
type ConfigStore interface {
	GetByMerchantID(ctx context.Context, merchantID uint) (*models.GuaranteeConfig, error)
	Save(ctx context.Context, cfg *models.GuaranteeConfig) error
	ClearStripeAccount(ctx context.Context, merchantID uint) error
}

// ConnectResult is the outcome of an onboarding request.
type ConnectResult struct {
	AlreadyConnected bool   `json:"already_connected"`
	AccountID        string `json:"account_id"`
	OnboardingURL    string `json:"onboarding_url,omitempty"`
}

// StatusResult is the capability probe response.
type StatusResult struct {
	Connected bool `json:"connected"`
	AccountStatus
}

// Service is the payment-account manager.
type Service struct {
	processor  Processor
	configs    ConfigStore
	refreshURL string
	returnURL  string
	log        *logrus.Logger
}

func NewService(processor Processor, configs ConfigStore, refreshURL, returnURL string, log *logrus.Logger) *Service {
	return &Service{
		processor:  processor,
		configs:    configs,
		refreshURL: refreshURL,
		returnURL:  returnURL,
		log:        log,
	}
}

// Connect creates or reuses the merchant's connected account and issues an
// onboarding link when onboarding is still incomplete. A failing probe of a
// stored account id means the reference is stale: it is cleared and a fresh
// account is created instead of failing the request.
func (s *Service) Connect(ctx context.Context, merchant *models.Merchant) (*ConnectResult, error) {
	cfg, err := s.configs.GetByMerchantID(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}

	if cfg.HasStripeAccount() {
		status, err := s.processor.GetAccount(ctx, cfg.StripeAccountID)
		if err == nil {
			if status.ChargeCapable() {
				return &ConnectResult{AlreadyConnected: true, AccountID: cfg.StripeAccountID}, nil
			}
			url, err := s.processor.CreateAccountLink(ctx, cfg.StripeAccountID, s.refreshURL, s.returnURL)
			if err != nil {
				return nil, err
			}
			return &ConnectResult{AccountID: cfg.StripeAccountID, OnboardingURL: url}, nil
		}
		s.log.WithFields(logrus.Fields{
			"module":      "stripeaccount",
			"merchant_id": merchant.ID,
			"account_id":  cfg.StripeAccountID,
		}).Warnf("stored account unusable, recreating: %v", err)
		if err := s.configs.ClearStripeAccount(ctx, merchant.ID); err != nil {
			return nil, fmt.Errorf("failed to clear stale account: %w", err)
		}
		cfg.StripeAccountID = ""
		cfg.Enabled = false
	}

	accountID, err := s.processor.CreateAccount(ctx, merchant.Email)
	if err != nil {
		return nil, err
	}
	cfg.StripeAccountID = accountID
	if err := s.configs.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to persist account id: %w", err)
	}

	url, err := s.processor.CreateAccountLink(ctx, accountID, s.refreshURL, s.returnURL)
	if err != nil {
		return nil, err
	}
	return &ConnectResult{AccountID: accountID, OnboardingURL: url}, nil
}

// Status probes the connected account's capabilities. Probe failures are
// reported as disconnected rather than surfaced as errors.
func (s *Service) Status(ctx context.Context, merchantID uint) (*StatusResult, error) {
	cfg, err := s.configs.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}
	if !cfg.HasStripeAccount() {
		return &StatusResult{Connected: false}, nil
	}
	status, err := s.processor.GetAccount(ctx, cfg.StripeAccountID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"module":      "stripeaccount",
			"merchant_id": merchantID,
			"account_id":  cfg.StripeAccountID,
		}).Warnf("account probe failed: %v", err)
		return &StatusResult{Connected: false}, nil
	}
	return &StatusResult{Connected: true, AccountStatus: status}, nil
}

// Disconnect removes the connected account reference. The guarantee is
// force-disabled in the same write; it must never stay enabled without an
// account behind it.
func (s *Service) Disconnect(ctx context.Context, merchantID uint) error {
	return s.configs.ClearStripeAccount(ctx, merchantID)
}
