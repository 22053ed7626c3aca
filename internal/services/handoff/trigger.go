// Package handoff fires the outbound webhook to the calendar-booking
// workflow once a card guarantee has been validated. The call is strictly
// best-effort: a failure is logged and never rolls back the validation.
package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resguard/internal/models"

	"github.com/sirupsen/logrus"
)

// BookingPayload carries everything the booking workflow needs to book the
// real-world appointment, including the merchant's own API key so the
// workflow can call back into merchant-scoped endpoints.
type BookingPayload struct {
	SessionID     string `json:"session_id"`
	ReservationID string `json:"reservation_id"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	PartySize     int    `json:"party_size"`

	StartAt  string `json:"start_at"`
	EndAt    string `json:"end_at"`
	Timezone string `json:"timezone"`

	MerchantName    string `json:"merchant_name"`
	MerchantAddress string `json:"merchant_address,omitempty"`
	ContactEmail    string `json:"contact_email,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	LogoURL         string `json:"logo_url,omitempty"`

	EmailOnValidation bool `json:"email_on_validation"`
	SMSOnValidation   bool `json:"sms_on_validation"`

	APIKey string `json:"api_key"`
}

// NewPayload assembles the hand-off payload from the validated session and
// the merchant's configuration. The reservation window is resolved in the
// session's timezone.
func NewPayload(merchant *models.Merchant, cfg *models.GuaranteeConfig, session *models.GuaranteeSession) (*BookingPayload, error) {
	start, err := session.ReservationStart()
	if err != nil {
		return nil, fmt.Errorf("invalid reservation window: %w", err)
	}
	end, err := session.ReservationEnd()
	if err != nil {
		return nil, fmt.Errorf("invalid reservation window: %w", err)
	}

	name := cfg.DisplayName
	if name == "" {
		name = merchant.BusinessName
	}

	return &BookingPayload{
		SessionID:         session.PublicID,
		ReservationID:     session.ReservationID,
		CustomerName:      session.CustomerName,
		CustomerEmail:     session.CustomerEmail,
		CustomerPhone:     session.CustomerPhone,
		PartySize:         session.PartySize,
		StartAt:           start.Format(time.RFC3339),
		EndAt:             end.Format(time.RFC3339),
		Timezone:          session.Timezone,
		MerchantName:      name,
		MerchantAddress:   cfg.Address,
		ContactEmail:      cfg.ContactEmail,
		ContactPhone:      cfg.ContactPhone,
		LogoURL:           cfg.LogoURL,
		EmailOnValidation: cfg.AutoSendEmailOnValidation,
		SMSOnValidation:   cfg.SMSEnabled && cfg.AutoSendSMSOnValidation,
		APIKey:            merchant.APIKey,
	}, nil
}

// Trigger posts booking payloads to the workflow endpoint.
type Trigger struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewTrigger creates a Trigger. An empty URL disables the hand-off; Book
// then becomes a logged no-op.
func NewTrigger(url string, log *logrus.Logger) *Trigger {
	return &Trigger{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Book sends the payload to the booking workflow. Errors are returned for
// logging/result reporting only; callers must not fail their request on it.
func (t *Trigger) Book(ctx context.Context, payload *BookingPayload) error {
	if t.url == "" {
		t.log.WithField("module", "handoff").Debug("booking workflow URL not configured, skipping hand-off")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode booking payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("booking workflow unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("booking workflow returned %d", resp.StatusCode)
	}

	t.log.WithFields(logrus.Fields{
		"module":     "handoff",
		"session_id": payload.SessionID,
	}).Info("booking hand-off delivered")
	return nil
}
