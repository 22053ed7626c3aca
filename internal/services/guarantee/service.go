// Package guarantee owns the guarantee session lifecycle: creation,
// validation, completion, no-show charging and cancellation. All state
// transitions go through the session store's conditional update so
// concurrent requests cannot produce illegal transitions.
package guarantee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resguard/internal/models"
	"resguard/internal/queue"
	"resguard/internal/repositories"
	"resguard/internal/services/eligibility"
	"resguard/internal/services/stripeaccount"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultDurationMinutes = 90

// Service is the session lifecycle engine.
type Service struct {
	sessions  SessionStore
	charges   ChargeStore
	configs   ConfigStore
	merchants MerchantStore
	processor stripeaccount.Processor
	notifier  Notifier
	trigger   BookingTrigger
	events    EventPublisher
	baseURL   string
	log       *logrus.Logger
}

func NewService(
	sessions SessionStore,
	charges ChargeStore,
	configs ConfigStore,
	merchants MerchantStore,
	processor stripeaccount.Processor,
	notifier Notifier,
	trigger BookingTrigger,
	events EventPublisher,
	baseURL string,
	log *logrus.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		charges:   charges,
		configs:   configs,
		merchants: merchants,
		processor: processor,
		notifier:  notifier,
		trigger:   trigger,
		events:    events,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
	}
}

// GuaranteeURL is the customer-facing link for a session.
func (s *Service) GuaranteeURL(sessionID string) string {
	return fmt.Sprintf("%s/guarantee/%s", s.baseURL, sessionID)
}

// probeAccount fetches the connected account's capabilities when the
// config claims to be enabled. A probe failure reads as not capable and
// is logged; eligibility then reports the account as not ready.
func (s *Service) probeAccount(ctx context.Context, cfg *models.GuaranteeConfig) stripeaccount.AccountStatus {
	if !cfg.Enabled || !cfg.HasStripeAccount() {
		if cfg.Enabled {
			s.log.WithFields(logrus.Fields{
				"module":      "guarantee",
				"merchant_id": cfg.MerchantID,
			}).Warn("guarantee enabled without a connected account, treating as disabled")
		}
		return stripeaccount.AccountStatus{}
	}
	status, err := s.processor.GetAccount(ctx, cfg.StripeAccountID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"module":      "guarantee",
			"merchant_id": cfg.MerchantID,
			"account_id":  cfg.StripeAccountID,
		}).Warnf("account probe failed: %v", err)
		return stripeaccount.AccountStatus{}
	}
	if !status.ChargeCapable() {
		s.log.WithFields(logrus.Fields{
			"module":      "guarantee",
			"merchant_id": cfg.MerchantID,
			"account_id":  cfg.StripeAccountID,
		}).Warn("guarantee enabled but account is not charge-capable, treating as disabled")
	}
	return status
}

// CheckStatus is the automation-facing config summary. Enabled reflects
// the capability invariant, not just the stored flag.
func (s *Service) CheckStatus(ctx context.Context, merchantID uint) (*CheckStatusResult, error) {
	cfg, err := s.configs.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}
	account := s.probeAccount(ctx, cfg)

	res := &CheckStatusResult{
		PenaltyAmount: cfg.PenaltyAmount,
		Currency:      cfg.Currency,
		ApplyToRule:   cfg.ApplyToRule,
		MinPersons:    cfg.MinPersons,
	}
	switch {
	case !cfg.Enabled:
		res.Reason = eligibility.ReasonDisabled
	case !cfg.HasStripeAccount():
		res.Reason = eligibility.ReasonNoStripeAccount
	case !account.ChargeCapable():
		res.Reason = eligibility.ReasonStripeAccountNotReady
	default:
		res.Enabled = true
	}
	return res, nil
}

// PublicStatus is the widget-facing view for a merchant agent id.
func (s *Service) PublicStatus(ctx context.Context, agentID string) (*PublicStatusView, error) {
	merchant, err := s.merchants.GetByAgentID(ctx, agentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	cfg, err := s.configs.GetByMerchantID(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}
	account := s.probeAccount(ctx, cfg)

	name := cfg.DisplayName
	if name == "" {
		name = merchant.BusinessName
	}
	view := &PublicStatusView{
		Available:     cfg.Enabled && cfg.HasStripeAccount() && account.ChargeCapable(),
		MerchantName:  name,
		LogoURL:       cfg.LogoURL,
		PenaltyAmount: cfg.PenaltyAmount,
		Currency:      cfg.Currency,
		ApplyToRule:   cfg.ApplyToRule,
	}
	if cfg.ApplyToRule == models.ApplyToMinPersons {
		view.MinPersons = cfg.MinPersons
	}
	return view, nil
}

// CreateSession evaluates eligibility and, when a guarantee is required,
// opens a pending session with a card-setup checkout on the connected
// account. Creation is idempotent on the reservation id: a second call
// returns the existing session and opens no second checkout. The
// idempotency lookup runs before eligibility, so a live session is always
// reported even when the config changed or the account probe fails in
// between.
func (s *Service) CreateSession(ctx context.Context, merchant *models.Merchant, in CreateSessionInput) (*CreateSessionResult, error) {
	existing, err := s.sessions.GetByReservationID(ctx, merchant.ID, in.ReservationID)
	if err == nil {
		return s.existingSessionResult(existing), nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	cfg, err := s.configs.GetByMerchantID(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}

	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation date: %w", err)
	}

	account := s.probeAccount(ctx, cfg)
	decision := eligibility.Evaluate(cfg, account, eligibility.Reservation{
		PartySize: in.PartySize,
		Date:      date,
	})
	if !decision.Required {
		return &CreateSessionResult{Required: false, Reason: decision.Reason}, nil
	}

	publicID := uuid.NewString()
	customerID, err := s.processor.CreateCustomer(ctx, cfg.StripeAccountID, in.CustomerName, in.CustomerEmail)
	if err != nil {
		return nil, err
	}
	checkout, err := s.processor.CreateSetupCheckout(ctx, stripeaccount.SetupCheckoutInput{
		AccountID:     cfg.StripeAccountID,
		CustomerID:    customerID,
		CustomerEmail: in.CustomerEmail,
		Reference:     publicID,
		SuccessURL:    s.GuaranteeURL(publicID) + "?result=success",
		CancelURL:     s.GuaranteeURL(publicID) + "?result=cancelled",
	})
	if err != nil {
		return nil, err
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	timezone := in.Timezone
	if timezone == "" {
		timezone = "Europe/Paris"
	}
	session := &models.GuaranteeSession{
		PublicID:          publicID,
		MerchantID:        merchant.ID,
		ReservationID:     in.ReservationID,
		CustomerName:      in.CustomerName,
		CustomerEmail:     in.CustomerEmail,
		CustomerPhone:     in.CustomerPhone,
		PartySize:         in.PartySize,
		Date:              in.Date,
		Time:              in.Time,
		DurationMinutes:   duration,
		Timezone:          timezone,
		Status:            models.StatusPending,
		CheckoutSessionID: checkout.ID,
		StripeCustomerID:  customerID,
		PenaltyAmount:     cfg.PenaltyAmount,
		Currency:          cfg.Currency,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if repositories.IsUniqueViolation(err) {
			// Lost a concurrent create for the same reservation; the
			// winner's session is the session.
			existing, rerr := s.sessions.GetByReservationID(ctx, merchant.ID, in.ReservationID)
			if rerr != nil {
				return nil, err
			}
			return s.existingSessionResult(existing), nil
		}
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	url := s.GuaranteeURL(publicID)
	notif := s.runEffects(ctx, merchant, cfg, session, Effects{CardRequestURL: url})
	return &CreateSessionResult{
		Required:      true,
		Reason:        decision.Reason,
		SessionID:     publicID,
		GuaranteeURL:  url,
		Session:       session,
		Notifications: &notif,
	}, nil
}

func (s *Service) existingSessionResult(existing *models.GuaranteeSession) *CreateSessionResult {
	return &CreateSessionResult{
		Required:      true,
		Reason:        eligibility.ReasonEligible,
		AlreadyExists: true,
		SessionID:     existing.PublicID,
		GuaranteeURL:  s.GuaranteeURL(existing.PublicID),
		Session:       existing,
	}
}

// HandleCheckoutComplete processes the checkout-complete webhook. The
// completion claim is re-verified against the connected account before
// any transition; a session already past pending is an idempotent no-op.
func (s *Service) HandleCheckoutComplete(ctx context.Context, checkoutSessionID string) (*ValidationResult, error) {
	session, err := s.sessions.GetByCheckoutSessionID(ctx, checkoutSessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != models.StatusPending {
		return &ValidationResult{Already: true, SessionID: session.PublicID}, nil
	}

	cfg, err := s.configs.GetByMerchantID(ctx, session.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}
	info, err := s.processor.GetCheckout(ctx, cfg.StripeAccountID, checkoutSessionID)
	if err != nil {
		return nil, err
	}
	if !info.Complete {
		return nil, ErrCheckoutNotComplete
	}
	intent, err := s.processor.GetSetupIntent(ctx, cfg.StripeAccountID, info.SetupIntentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fields := map[string]interface{}{
		"setup_intent_id":   info.SetupIntentID,
		"payment_method_id": intent.PaymentMethodID,
		"validated_at":      now,
	}
	if intent.CustomerID != "" {
		fields["stripe_customer_id"] = intent.CustomerID
	}
	err = s.sessions.UpdateStatusIf(ctx, session.PublicID, models.StatusPending, models.StatusValidated, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			// A concurrent delivery already validated the session.
			return &ValidationResult{Already: true, SessionID: session.PublicID}, nil
		}
		return nil, err
	}

	session.Status = models.StatusValidated
	session.SetupIntentID = info.SetupIntentID
	session.PaymentMethodID = intent.PaymentMethodID
	if intent.CustomerID != "" {
		session.StripeCustomerID = intent.CustomerID
	}
	session.ValidatedAt = &now

	merchant, merr := s.merchants.GetByID(ctx, session.MerchantID)
	if merr != nil {
		merchant = nil
	}
	notif := s.runEffects(ctx, merchant, cfg, session, Effects{
		ValidationConfirmed: true,
		Handoff:             true,
		Events: []queue.Event{{
			Type:          queue.EventSessionValidated,
			SessionID:     session.PublicID,
			MerchantID:    session.MerchantID,
			ReservationID: session.ReservationID,
		}},
	})

	return &ValidationResult{
		SessionID:     session.PublicID,
		Notifications: notif,
		ValidatedAt:   &now,
	}, nil
}

// MarkOutcome applies the staff-reported attendance result. "attended"
// closes the session; "noshow" executes the penalty charge. Exactly one
// NoshowCharge row is written per no-show marking, success or failure.
func (s *Service) MarkOutcome(ctx context.Context, merchantID uint, sessionID string, outcome Outcome) (*OutcomeResult, error) {
	if outcome != OutcomeAttended && outcome != OutcomeNoshow {
		return nil, ErrInvalidOutcome
	}

	session, err := s.sessions.GetByPublicIDForMerchant(ctx, merchantID, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if outcome == OutcomeAttended {
		err := s.sessions.UpdateStatusIf(ctx, session.PublicID, models.StatusValidated, models.StatusCompleted, nil)
		if err != nil {
			if errors.Is(err, repositories.ErrStatusConflict) {
				return nil, ErrSessionNotValidated
			}
			return nil, err
		}
		return &OutcomeResult{Status: models.StatusCompleted}, nil
	}

	// The charge only makes sense against a validated card.
	if session.Status != models.StatusValidated {
		return nil, ErrSessionNotValidated
	}
	cfg, err := s.configs.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}

	paymentMethodID := session.PaymentMethodID
	customerID := session.StripeCustomerID
	if paymentMethodID == "" {
		intent, err := s.processor.GetSetupIntent(ctx, cfg.StripeAccountID, session.SetupIntentID)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve stored payment method: %w", err)
		}
		paymentMethodID = intent.PaymentMethodID
		if customerID == "" {
			customerID = intent.CustomerID
		}
	}

	currency := session.Currency
	if currency == "" {
		currency = "eur"
	}
	amount := session.PenaltyAmountMinor()

	paymentIntentID, chargeErr := s.processor.ChargeOffSession(ctx, stripeaccount.ChargeInput{
		AccountID:       cfg.StripeAccountID,
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		Amount:          amount,
		Currency:        currency,
		Description:     fmt.Sprintf("No-show penalty for reservation %s", session.ReservationID),
	})

	charge := &models.NoshowCharge{
		GuaranteeSessionID: session.PublicID,
		MerchantID:         merchantID,
		Amount:             amount,
		Currency:           currency,
	}
	target := models.StatusNoshowCharged
	eventType := queue.EventNoshowCharged
	result := &OutcomeResult{Status: models.StatusNoshowCharged, Charged: true, Amount: amount}
	now := time.Now().UTC()
	var fields map[string]interface{}

	if chargeErr != nil {
		reason := stripeaccount.FailureReason(chargeErr)
		charge.Status = models.ChargeFailed
		charge.FailureReason = reason
		target = models.StatusNoshowFailed
		eventType = queue.EventNoshowFailed
		result = &OutcomeResult{Status: models.StatusNoshowFailed, Charged: false, Amount: amount, Error: reason}
	} else {
		charge.Status = models.ChargeSucceeded
		charge.PaymentIntentID = paymentIntentID
		fields = map[string]interface{}{"charged_at": now}
	}

	// The attempt is recorded no matter what the processor said.
	if err := s.charges.Create(ctx, charge); err != nil {
		s.log.WithFields(logrus.Fields{
			"module":     "guarantee",
			"session_id": session.PublicID,
		}).Errorf("failed to record charge attempt: %v", err)
		if chargeErr != nil {
			return nil, fmt.Errorf("failed to record charge attempt: %w", err)
		}
		// Money already moved; the state transition must still happen.
	}

	if err := s.sessions.UpdateStatusIf(ctx, session.PublicID, models.StatusValidated, target, fields); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			// A concurrent marking won the transition. The attempt row
			// above stays as the audit record of this attempt.
			s.log.WithFields(logrus.Fields{
				"module":     "guarantee",
				"session_id": session.PublicID,
			}).Warn("session advanced concurrently during no-show charge")
			return result, nil
		}
		return nil, err
	}

	s.runEffects(ctx, nil, cfg, session, Effects{
		Events: []queue.Event{{
			Type:          eventType,
			SessionID:     session.PublicID,
			MerchantID:    session.MerchantID,
			ReservationID: session.ReservationID,
			Amount:        amount,
			Currency:      currency,
		}},
	})
	return result, nil
}

// ResendLink opens a fresh card-setup checkout for a pending session and
// re-sends the card-request notification.
func (s *Service) ResendLink(ctx context.Context, merchantID uint, sessionID string) (*ResendResult, error) {
	session, err := s.sessions.GetByPublicIDForMerchant(ctx, merchantID, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != models.StatusPending {
		return nil, ErrSessionNotPending
	}
	cfg, err := s.configs.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}

	checkout, err := s.openCheckout(ctx, cfg, session)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.sessions.UpdateStatusIf(ctx, session.PublicID, models.StatusPending, models.StatusPending, map[string]interface{}{
		"checkout_session_id": checkout.ID,
		"reminder_count":      session.ReminderCount + 1,
		"last_reminder_at":    now,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return nil, ErrSessionNotPending
		}
		return nil, err
	}
	session.CheckoutSessionID = checkout.ID
	session.ReminderCount++
	session.LastReminderAt = &now

	url := s.GuaranteeURL(session.PublicID)
	notif := s.runEffects(ctx, nil, cfg, session, Effects{CardRequestURL: url})
	return &ResendResult{
		GuaranteeURL:  url,
		ReminderCount: session.ReminderCount,
		Notifications: notif,
	}, nil
}

// Cancel closes a pending session. Terminal.
func (s *Service) Cancel(ctx context.Context, merchantID uint, sessionID string) error {
	session, err := s.sessions.GetByPublicIDForMerchant(ctx, merchantID, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	err = s.sessions.UpdateStatusIf(ctx, session.PublicID, models.StatusPending, models.StatusCancelled, nil)
	if errors.Is(err, repositories.ErrStatusConflict) {
		return ErrSessionNotPending
	}
	return err
}

// Dashboard buckets the merchant's recent sessions and computes the
// validation rate over non-cancelled sessions.
func (s *Service) Dashboard(ctx context.Context, merchantID uint, period string) (*DashboardResult, error) {
	now := time.Now()
	var since time.Time
	switch period {
	case "today":
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		since = now.AddDate(0, 0, -7)
	default:
		period = "month"
		since = now.AddDate(0, -1, 0)
	}

	sessions, err := s.sessions.ListByMerchantSince(ctx, merchantID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	res := &DashboardResult{
		Period:    period,
		Pending:   []models.GuaranteeSession{},
		Validated: []models.GuaranteeSession{},
		Today:     []models.GuaranteeSession{},
	}
	today := now.Format("2006-01-02")
	var counted, advanced int
	for _, session := range sessions {
		switch session.Status {
		case models.StatusPending:
			res.Pending = append(res.Pending, session)
		case models.StatusValidated:
			res.Validated = append(res.Validated, session)
		}
		if session.Date == today && session.Status != models.StatusCancelled {
			res.Today = append(res.Today, session)
		}
		if session.Status != models.StatusCancelled {
			counted++
			if session.Status != models.StatusPending {
				advanced++
			}
		}
	}
	res.Total = counted
	if counted > 0 {
		res.ValidationRate = float64(advanced) / float64(counted) * 100
	}
	return res, nil
}

// PublicSession is the customer-facing summary. Pending sessions past the
// expiry window are reported gone.
func (s *Service) PublicSession(ctx context.Context, sessionID string) (*PublicSessionView, error) {
	session, err := s.sessions.GetByPublicID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}
	cfg, err := s.configs.GetByMerchantID(ctx, session.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guarantee config: %w", err)
	}

	name := cfg.DisplayName
	if name == "" {
		if merchant, err := s.merchants.GetByID(ctx, session.MerchantID); err == nil {
			name = merchant.BusinessName
		}
	}
	return &PublicSessionView{
		SessionID:     session.PublicID,
		Status:        session.Status,
		MerchantName:  name,
		LogoURL:       cfg.LogoURL,
		Address:       cfg.Address,
		CustomerName:  session.CustomerName,
		PartySize:     session.PartySize,
		Date:          session.Date,
		Time:          session.Time,
		PenaltyAmount: session.PenaltyAmount,
		Currency:      session.Currency,
	}, nil
}

// PublicCheckout returns a card-setup checkout URL for a pending session,
// opening a fresh checkout each time since hosted checkout URLs expire.
func (s *Service) PublicCheckout(ctx context.Context, sessionID string) (string, error) {
	session, err := s.sessions.GetByPublicID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	if session.Expired(time.Now()) {
		return "", ErrSessionExpired
	}
	if session.Status != models.StatusPending {
		return "", ErrSessionNotPending
	}
	cfg, err := s.configs.GetByMerchantID(ctx, session.MerchantID)
	if err != nil {
		return "", fmt.Errorf("failed to load guarantee config: %w", err)
	}

	checkout, err := s.openCheckout(ctx, cfg, session)
	if err != nil {
		return "", err
	}
	err = s.sessions.UpdateStatusIf(ctx, session.PublicID, models.StatusPending, models.StatusPending, map[string]interface{}{
		"checkout_session_id": checkout.ID,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return "", ErrSessionNotPending
		}
		return "", err
	}
	return checkout.URL, nil
}

// SessionDetails returns the full session and its charge history for the
// booking workflow. Platform-scoped; the caller is authenticated with the
// master key.
func (s *Service) SessionDetails(ctx context.Context, sessionID string) (*SessionDetails, error) {
	session, err := s.sessions.GetByPublicID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	charges, err := s.charges.ListBySession(ctx, session.PublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list charge attempts: %w", err)
	}
	return &SessionDetails{Session: session, Charges: charges}, nil
}

// ConfirmBooking records the booking workflow's outcome. Informational
// only; guarantee state never changes here.
func (s *Service) ConfirmBooking(ctx context.Context, sessionID string, success bool, message string) error {
	session, err := s.sessions.GetByPublicID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	s.log.WithFields(logrus.Fields{
		"module":         "guarantee",
		"session_id":     session.PublicID,
		"reservation_id": session.ReservationID,
		"success":        success,
		"message":        message,
	}).Info("booking workflow confirmation received")
	return nil
}

// openCheckout reuses the session's Stripe customer (creating one if the
// session predates customer creation) and opens a setup-mode checkout.
func (s *Service) openCheckout(ctx context.Context, cfg *models.GuaranteeConfig, session *models.GuaranteeSession) (*stripeaccount.SetupCheckout, error) {
	customerID := session.StripeCustomerID
	if customerID == "" {
		var err error
		customerID, err = s.processor.CreateCustomer(ctx, cfg.StripeAccountID, session.CustomerName, session.CustomerEmail)
		if err != nil {
			return nil, err
		}
		session.StripeCustomerID = customerID
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to persist customer id: %w", err)
		}
	}
	return s.processor.CreateSetupCheckout(ctx, stripeaccount.SetupCheckoutInput{
		AccountID:     cfg.StripeAccountID,
		CustomerID:    customerID,
		CustomerEmail: session.CustomerEmail,
		Reference:     session.PublicID,
		SuccessURL:    s.GuaranteeURL(session.PublicID) + "?result=success",
		CancelURL:     s.GuaranteeURL(session.PublicID) + "?result=cancelled",
	})
}
