// Package notification sends best-effort email/SMS messages on guarantee
// lifecycle transitions, gated by the merchant's toggles.
package notification

import (
	"context"
	"fmt"
	"strings"

	"resguard/internal/models"

	"github.com/sirupsen/logrus"
)

// Service dispatches lifecycle notifications. A nil sender marks the
// channel as unavailable; the corresponding toggle is then ignored.
type Service struct {
	email EmailSender
	sms   SMSSender
	log   *logrus.Logger
}

func NewService(email EmailSender, sms SMSSender, log *logrus.Logger) *Service {
	return &Service{email: email, sms: sms, log: log}
}

// SendCardRequest asks the customer to secure the reservation with a card.
// Sent on session creation when the respective toggles are on.
func (s *Service) SendCardRequest(ctx context.Context, cfg *models.GuaranteeConfig, session *models.GuaranteeSession, guaranteeURL string) Result {
	name := merchantName(cfg)
	subject := fmt.Sprintf("%s - confirm your reservation", name)
	body := fmt.Sprintf(
		"Hello %s,\n\nTo confirm your reservation for %d on %s at %s, please secure it with a card:\n%s\n\nNo charge is made now. A no-show fee of %d %s per person applies if you do not attend.\n\n%s",
		session.CustomerName, session.PartySize, session.Date, session.Time,
		guaranteeURL, session.PenaltyAmount, currencyLabel(session.Currency), name,
	)
	smsBody := fmt.Sprintf("%s: confirm your reservation for %s %s by securing it with a card: %s",
		name, session.Date, session.Time, guaranteeURL)

	return s.dispatch(ctx, session,
		cfg.AutoSendEmailOnCreate, cfg.SMSEnabled && cfg.AutoSendSMSOnCreate,
		subject, body, smsBody)
}

// SendValidationConfirmed tells the customer the card was accepted and the
// reservation is confirmed. Sent on the pending->validated transition.
func (s *Service) SendValidationConfirmed(ctx context.Context, cfg *models.GuaranteeConfig, session *models.GuaranteeSession) Result {
	name := merchantName(cfg)
	subject := fmt.Sprintf("%s - reservation confirmed", name)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour reservation for %d on %s at %s is confirmed. We look forward to seeing you!\n\n%s",
		session.CustomerName, session.PartySize, session.Date, session.Time, name,
	)
	smsBody := fmt.Sprintf("%s: your reservation for %s %s is confirmed.",
		name, session.Date, session.Time)

	return s.dispatch(ctx, session,
		cfg.AutoSendEmailOnValidation, cfg.SMSEnabled && cfg.AutoSendSMSOnValidation,
		subject, body, smsBody)
}

func (s *Service) dispatch(ctx context.Context, session *models.GuaranteeSession, wantEmail, wantSMS bool, subject, body, smsBody string) Result {
	var res Result

	if wantEmail && s.email != nil && session.CustomerEmail != "" {
		if err := s.email.Send(ctx, session.CustomerEmail, subject, body); err != nil {
			res.EmailError = err.Error()
			s.logSendError(session, "email", err)
		} else {
			res.EmailSent = true
		}
	}

	if wantSMS && s.sms != nil && session.CustomerPhone != "" {
		if err := s.sms.Send(ctx, session.CustomerPhone, smsBody); err != nil {
			res.SMSError = err.Error()
			s.logSendError(session, "sms", err)
		} else {
			res.SMSSent = true
		}
	}

	return res
}

func (s *Service) logSendError(session *models.GuaranteeSession, channel string, err error) {
	s.log.WithFields(logrus.Fields{
		"module":     "notification",
		"channel":    channel,
		"session_id": session.PublicID,
	}).Warnf("send failed: %v", err)
}

func merchantName(cfg *models.GuaranteeConfig) string {
	if cfg.DisplayName != "" {
		return cfg.DisplayName
	}
	return "Your restaurant"
}

func currencyLabel(currency string) string {
	if currency == "" {
		return "EUR"
	}
	return strings.ToUpper(currency)
}
