package guarantee

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"resguard/internal/models"
	"resguard/internal/queue"
	"resguard/internal/repositories"
	"resguard/internal/services/eligibility"
	"resguard/internal/services/handoff"
	"resguard/internal/services/notification"
	"resguard/internal/services/stripeaccount"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, s *models.GuaranteeSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionStore) GetByPublicID(ctx context.Context, publicID string) (*models.GuaranteeSession, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuaranteeSession), args.Error(1)
}

func (m *MockSessionStore) GetByPublicIDForMerchant(ctx context.Context, merchantID uint, publicID string) (*models.GuaranteeSession, error) {
	args := m.Called(ctx, merchantID, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuaranteeSession), args.Error(1)
}

func (m *MockSessionStore) GetByReservationID(ctx context.Context, merchantID uint, reservationID string) (*models.GuaranteeSession, error) {
	args := m.Called(ctx, merchantID, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuaranteeSession), args.Error(1)
}

func (m *MockSessionStore) GetByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*models.GuaranteeSession, error) {
	args := m.Called(ctx, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuaranteeSession), args.Error(1)
}

func (m *MockSessionStore) ListByMerchantSince(ctx context.Context, merchantID uint, since time.Time) ([]models.GuaranteeSession, error) {
	args := m.Called(ctx, merchantID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GuaranteeSession), args.Error(1)
}

func (m *MockSessionStore) UpdateStatusIf(ctx context.Context, publicID string, from, to models.SessionStatus, fields map[string]interface{}) error {
	args := m.Called(ctx, publicID, from, to, fields)
	return args.Error(0)
}

func (m *MockSessionStore) Save(ctx context.Context, s *models.GuaranteeSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockChargeStore struct {
	mock.Mock
}

func (m *MockChargeStore) Create(ctx context.Context, c *models.NoshowCharge) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockChargeStore) ListBySession(ctx context.Context, sessionPublicID string) ([]models.NoshowCharge, error) {
	args := m.Called(ctx, sessionPublicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NoshowCharge), args.Error(1)
}

type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) GetByMerchantID(ctx context.Context, merchantID uint) (*models.GuaranteeConfig, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuaranteeConfig), args.Error(1)
}

type MockMerchantStore struct {
	mock.Mock
}

func (m *MockMerchantStore) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantStore) GetByAgentID(ctx context.Context, agentID string) (*models.Merchant, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateAccount(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockProcessor) GetAccount(ctx context.Context, accountID string) (stripeaccount.AccountStatus, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(stripeaccount.AccountStatus), args.Error(1)
}

func (m *MockProcessor) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockProcessor) CreateCustomer(ctx context.Context, accountID, name, email string) (string, error) {
	args := m.Called(ctx, accountID, name, email)
	return args.String(0), args.Error(1)
}

func (m *MockProcessor) CreateSetupCheckout(ctx context.Context, in stripeaccount.SetupCheckoutInput) (*stripeaccount.SetupCheckout, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeaccount.SetupCheckout), args.Error(1)
}

func (m *MockProcessor) GetCheckout(ctx context.Context, accountID, checkoutSessionID string) (*stripeaccount.CheckoutInfo, error) {
	args := m.Called(ctx, accountID, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeaccount.CheckoutInfo), args.Error(1)
}

func (m *MockProcessor) GetSetupIntent(ctx context.Context, accountID, setupIntentID string) (*stripeaccount.SetupIntentInfo, error) {
	args := m.Called(ctx, accountID, setupIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeaccount.SetupIntentInfo), args.Error(1)
}

func (m *MockProcessor) ChargeOffSession(ctx context.Context, in stripeaccount.ChargeInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendCardRequest(ctx context.Context, cfg *models.GuaranteeConfig, session *models.GuaranteeSession, guaranteeURL string) notification.Result {
	args := m.Called(ctx, cfg, session, guaranteeURL)
	return args.Get(0).(notification.Result)
}

func (m *MockNotifier) SendValidationConfirmed(ctx context.Context, cfg *models.GuaranteeConfig, session *models.GuaranteeSession) notification.Result {
	args := m.Called(ctx, cfg, session)
	return args.Get(0).(notification.Result)
}

type MockTrigger struct {
	mock.Mock
}

func (m *MockTrigger) Book(ctx context.Context, payload *handoff.BookingPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event queue.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type serviceMocks struct {
	sessions  *MockSessionStore
	charges   *MockChargeStore
	configs   *MockConfigStore
	merchants *MockMerchantStore
	processor *MockProcessor
	notifier  *MockNotifier
	trigger   *MockTrigger
	events    *MockPublisher
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		sessions:  new(MockSessionStore),
		charges:   new(MockChargeStore),
		configs:   new(MockConfigStore),
		merchants: new(MockMerchantStore),
		processor: new(MockProcessor),
		notifier:  new(MockNotifier),
		trigger:   new(MockTrigger),
		events:    new(MockPublisher),
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(m.sessions, m.charges, m.configs, m.merchants, m.processor,
		m.notifier, m.trigger, m.events, "https://guarantee.example.com/", log)
	return svc, m
}

func activeConfig() *models.GuaranteeConfig {
	return &models.GuaranteeConfig{
		MerchantID:      1,
		Enabled:         true,
		PenaltyAmount:   30,
		Currency:        "eur",
		ApplyToRule:     models.ApplyToAll,
		StripeAccountID: "acct_123",
		DisplayName:     "Chez Test",
	}
}

func capableAccount() stripeaccount.AccountStatus {
	return stripeaccount.AccountStatus{DetailsSubmitted: true, ChargesEnabled: true, PayoutsEnabled: true}
}

func validatedSession() *models.GuaranteeSession {
	now := time.Now().UTC()
	return &models.GuaranteeSession{
		PublicID:         "sess-1",
		MerchantID:       1,
		ReservationID:    "resa-42",
		CustomerName:     "Jean Dupont",
		CustomerEmail:    "jean@example.com",
		PartySize:        6,
		Date:             "2026-08-29",
		Time:             "20:00",
		Status:           models.StatusValidated,
		PaymentMethodID:  "pm_123",
		StripeCustomerID: "cus_123",
		PenaltyAmount:    30,
		Currency:         "eur",
		CreatedAt:        now.Add(-time.Hour),
		ValidatedAt:      &now,
	}
}

func TestCreateSession(t *testing.T) {
	merchant := &models.Merchant{ID: 1, BusinessName: "Chez Test"}
	input := CreateSessionInput{
		ReservationID: "resa-42",
		CustomerName:  "Jean Dupont",
		CustomerEmail: "jean@example.com",
		PartySize:     6,
		Date:          "2026-08-29",
		Time:          "20:00",
	}

	t.Run("not required when disabled", func(t *testing.T) {
		svc, m := newTestService()
		cfg := activeConfig()
		cfg.Enabled = false
		m.sessions.On("GetByReservationID", mock.Anything, uint(1), "resa-42").
			Return(nil, repositories.ErrNotFound)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(cfg, nil)

		res, err := svc.CreateSession(context.Background(), merchant, input)

		assert.NoError(t, err)
		assert.False(t, res.Required)
		assert.Equal(t, eligibility.ReasonDisabled, res.Reason)
		m.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.processor.AssertNotCalled(t, "CreateSetupCheckout", mock.Anything, mock.Anything)
	})

	t.Run("returns existing session without a new checkout", func(t *testing.T) {
		svc, m := newTestService()
		existing := validatedSession()
		existing.Status = models.StatusPending
		m.sessions.On("GetByReservationID", mock.Anything, uint(1), "resa-42").Return(existing, nil)

		res, err := svc.CreateSession(context.Background(), merchant, input)

		assert.NoError(t, err)
		assert.True(t, res.Required)
		assert.True(t, res.AlreadyExists)
		assert.Equal(t, "sess-1", res.SessionID)
		assert.Equal(t, "https://guarantee.example.com/guarantee/sess-1", res.GuaranteeURL)
		m.processor.AssertNotCalled(t, "CreateSetupCheckout", mock.Anything, mock.Anything)
		m.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("returns existing session even when the account probe fails", func(t *testing.T) {
		svc, m := newTestService()
		existing := validatedSession()
		existing.Status = models.StatusPending
		m.sessions.On("GetByReservationID", mock.Anything, uint(1), "resa-42").Return(existing, nil)
		m.processor.On("GetAccount", mock.Anything, "acct_123").
			Return(stripeaccount.AccountStatus{}, errors.New("stripe unreachable"))

		res, err := svc.CreateSession(context.Background(), merchant, input)

		assert.NoError(t, err)
		assert.True(t, res.Required)
		assert.True(t, res.AlreadyExists)
		assert.Equal(t, "sess-1", res.SessionID)
	})

	t.Run("returns existing session even when the config was disabled", func(t *testing.T) {
		svc, m := newTestService()
		existing := validatedSession()
		existing.Status = models.StatusPending
		m.sessions.On("GetByReservationID", mock.Anything, uint(1), "resa-42").Return(existing, nil)
		cfg := activeConfig()
		cfg.Enabled = false
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(cfg, nil)

		res, err := svc.CreateSession(context.Background(), merchant, input)

		assert.NoError(t, err)
		assert.True(t, res.Required)
		assert.True(t, res.AlreadyExists)
		assert.Equal(t, "sess-1", res.SessionID)
	})

	t.Run("creates pending session and sends card request", func(t *testing.T) {
		svc, m := newTestService()
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		m.processor.On("GetAccount", mock.Anything, "acct_123").Return(capableAccount(), nil)
		m.sessions.On("GetByReservationID", mock.Anything, uint(1), "resa-42").
			Return(nil, repositories.ErrNotFound)
		m.processor.On("CreateCustomer", mock.Anything, "acct_123", "Jean Dupont", "jean@example.com").
			Return("cus_new", nil)
		m.processor.On("CreateSetupCheckout", mock.Anything, mock.MatchedBy(func(in stripeaccount.SetupCheckoutInput) bool {
			return in.AccountID == "acct_123" && in.CustomerID == "cus_new"
		})).Return(&stripeaccount.SetupCheckout{ID: "cs_new", URL: "https://checkout.example/cs_new"}, nil)
		m.sessions.On("Create", mock.Anything, mock.MatchedBy(func(s *models.GuaranteeSession) bool {
			return s.Status == models.StatusPending &&
				s.PenaltyAmount == 30 &&
				s.CheckoutSessionID == "cs_new" &&
				s.DurationMinutes == 90 &&
				s.Timezone == "Europe/Paris"
		})).Return(nil)
		m.notifier.On("SendCardRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(notification.Result{EmailSent: true})

		res, err := svc.CreateSession(context.Background(), merchant, input)

		assert.NoError(t, err)
		assert.True(t, res.Required)
		assert.False(t, res.AlreadyExists)
		assert.NotEmpty(t, res.SessionID)
		assert.Contains(t, res.GuaranteeURL, res.SessionID)
		assert.True(t, res.Notifications.EmailSent)
		m.sessions.AssertExpectations(t)
	})

	t.Run("duplicate insert falls back to the winner's session", func(t *testing.T) {
		svc, m := newTestService()
		winner := validatedSession()
		winner.Status = models.StatusPending
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		m.processor.On("GetAccount", mock.Anything, "acct_123").Return(capableAccount(), nil)
		m.sessions.On("GetByReservationID", mock.Anything, uint(1), "resa-42").
			Return(nil, repositories.ErrNotFound).Once()
		m.processor.On("CreateCustomer", mock.Anything, "acct_123", "Jean Dupont", "jean@example.com").
			Return("cus_new", nil)
		m.processor.On("CreateSetupCheckout", mock.Anything, mock.Anything).
			Return(&stripeaccount.SetupCheckout{ID: "cs_new", URL: "https://checkout.example/cs_new"}, nil)
		m.sessions.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
		m.sessions.On("GetByReservationID", mock.Anything, uint(1), "resa-42").
			Return(winner, nil).Once()

		res, err := svc.CreateSession(context.Background(), merchant, input)

		assert.NoError(t, err)
		assert.True(t, res.AlreadyExists)
		assert.Equal(t, "sess-1", res.SessionID)
		m.notifier.AssertNotCalled(t, "SendCardRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleCheckoutComplete(t *testing.T) {
	t.Run("validates pending session after re-verification", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.Status = models.StatusPending
		session.PaymentMethodID = ""
		session.CheckoutSessionID = "cs_1"
		m.sessions.On("GetByCheckoutSessionID", mock.Anything, "cs_1").Return(session, nil)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		m.processor.On("GetCheckout", mock.Anything, "acct_123", "cs_1").
			Return(&stripeaccount.CheckoutInfo{ID: "cs_1", Complete: true, SetupIntentID: "seti_1"}, nil)
		m.processor.On("GetSetupIntent", mock.Anything, "acct_123", "seti_1").
			Return(&stripeaccount.SetupIntentInfo{PaymentMethodID: "pm_1", CustomerID: "cus_1"}, nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusPending, models.StatusValidated,
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["setup_intent_id"] == "seti_1" && fields["payment_method_id"] == "pm_1"
			})).Return(nil)
		m.merchants.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Merchant{ID: 1, BusinessName: "Chez Test"}, nil)
		m.notifier.On("SendValidationConfirmed", mock.Anything, mock.Anything, mock.Anything).
			Return(notification.Result{EmailSent: true})
		m.trigger.On("Book", mock.Anything, mock.Anything).Return(nil)
		m.events.On("Publish", mock.Anything, mock.MatchedBy(func(e queue.Event) bool {
			return e.Type == queue.EventSessionValidated && e.SessionID == "sess-1"
		})).Return(nil)

		res, err := svc.HandleCheckoutComplete(context.Background(), "cs_1")

		assert.NoError(t, err)
		assert.False(t, res.Already)
		assert.Equal(t, "sess-1", res.SessionID)
		assert.NotNil(t, res.ValidatedAt)
		m.events.AssertExpectations(t)
		m.trigger.AssertExpectations(t)
	})

	t.Run("second delivery is a no-op", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.CheckoutSessionID = "cs_1"
		m.sessions.On("GetByCheckoutSessionID", mock.Anything, "cs_1").Return(session, nil)

		res, err := svc.HandleCheckoutComplete(context.Background(), "cs_1")

		assert.NoError(t, err)
		assert.True(t, res.Already)
		m.sessions.AssertNotCalled(t, "UpdateStatusIf",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.notifier.AssertNotCalled(t, "SendValidationConfirmed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent delivery losing the transition is a no-op", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.Status = models.StatusPending
		session.CheckoutSessionID = "cs_1"
		m.sessions.On("GetByCheckoutSessionID", mock.Anything, "cs_1").Return(session, nil)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		m.processor.On("GetCheckout", mock.Anything, "acct_123", "cs_1").
			Return(&stripeaccount.CheckoutInfo{ID: "cs_1", Complete: true, SetupIntentID: "seti_1"}, nil)
		m.processor.On("GetSetupIntent", mock.Anything, "acct_123", "seti_1").
			Return(&stripeaccount.SetupIntentInfo{PaymentMethodID: "pm_1"}, nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusPending, models.StatusValidated, mock.Anything).
			Return(repositories.ErrStatusConflict)

		res, err := svc.HandleCheckoutComplete(context.Background(), "cs_1")

		assert.NoError(t, err)
		assert.True(t, res.Already)
		m.notifier.AssertNotCalled(t, "SendValidationConfirmed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects an unverified completion claim", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.Status = models.StatusPending
		session.CheckoutSessionID = "cs_1"
		m.sessions.On("GetByCheckoutSessionID", mock.Anything, "cs_1").Return(session, nil)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		m.processor.On("GetCheckout", mock.Anything, "acct_123", "cs_1").
			Return(&stripeaccount.CheckoutInfo{ID: "cs_1", Complete: false}, nil)

		_, err := svc.HandleCheckoutComplete(context.Background(), "cs_1")

		assert.ErrorIs(t, err, ErrCheckoutNotComplete)
		m.sessions.AssertNotCalled(t, "UpdateStatusIf",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMarkOutcomeAttended(t *testing.T) {
	t.Run("completes a validated session", func(t *testing.T) {
		svc, m := newTestService()
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").
			Return(validatedSession(), nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusValidated, models.StatusCompleted,
			mock.Anything).Return(nil)

		res, err := svc.MarkOutcome(context.Background(), 1, "sess-1", OutcomeAttended)

		assert.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, res.Status)
		assert.False(t, res.Charged)
	})

	t.Run("rejects a session that is not validated", func(t *testing.T) {
		svc, m := newTestService()
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").
			Return(validatedSession(), nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusValidated, models.StatusCompleted,
			mock.Anything).Return(repositories.ErrStatusConflict)

		_, err := svc.MarkOutcome(context.Background(), 1, "sess-1", OutcomeAttended)

		assert.ErrorIs(t, err, ErrSessionNotValidated)
	})

	t.Run("rejects an unknown outcome", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.MarkOutcome(context.Background(), 1, "sess-1", Outcome("ghosted"))
		assert.ErrorIs(t, err, ErrInvalidOutcome)
	})
}

func TestMarkOutcomeNoshow(t *testing.T) {
	t.Run("charges the snapshot amount and records the attempt", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").Return(session, nil)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		// 30 EUR per person, 6 people, in cents.
		m.processor.On("ChargeOffSession", mock.Anything, mock.MatchedBy(func(in stripeaccount.ChargeInput) bool {
			return in.Amount == 18000 && in.Currency == "eur" &&
				in.PaymentMethodID == "pm_123" && in.CustomerID == "cus_123"
		})).Return("pi_1", nil)
		m.charges.On("Create", mock.Anything, mock.MatchedBy(func(c *models.NoshowCharge) bool {
			return c.Status == models.ChargeSucceeded && c.Amount == 18000 &&
				c.PaymentIntentID == "pi_1" && c.GuaranteeSessionID == "sess-1"
		})).Return(nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusValidated, models.StatusNoshowCharged,
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				_, ok := fields["charged_at"]
				return ok
			})).Return(nil)
		m.events.On("Publish", mock.Anything, mock.MatchedBy(func(e queue.Event) bool {
			return e.Type == queue.EventNoshowCharged && e.Amount == 18000
		})).Return(nil)

		res, err := svc.MarkOutcome(context.Background(), 1, "sess-1", OutcomeNoshow)

		assert.NoError(t, err)
		assert.Equal(t, models.StatusNoshowCharged, res.Status)
		assert.True(t, res.Charged)
		assert.Equal(t, int64(18000), res.Amount)
		m.charges.AssertExpectations(t)
		m.events.AssertExpectations(t)
	})

	t.Run("declined charge still records exactly one attempt", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").Return(session, nil)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		m.processor.On("ChargeOffSession", mock.Anything, mock.Anything).
			Return("", errors.New("card_declined"))
		m.charges.On("Create", mock.Anything, mock.MatchedBy(func(c *models.NoshowCharge) bool {
			return c.Status == models.ChargeFailed && c.Amount == 18000 &&
				c.PaymentIntentID == "" && c.FailureReason != ""
		})).Return(nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusValidated, models.StatusNoshowFailed,
			mock.Anything).Return(nil)
		m.events.On("Publish", mock.Anything, mock.MatchedBy(func(e queue.Event) bool {
			return e.Type == queue.EventNoshowFailed
		})).Return(nil)

		res, err := svc.MarkOutcome(context.Background(), 1, "sess-1", OutcomeNoshow)

		assert.NoError(t, err)
		assert.Equal(t, models.StatusNoshowFailed, res.Status)
		assert.False(t, res.Charged)
		assert.NotEmpty(t, res.Error)
		m.charges.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("rejects a pending session", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.Status = models.StatusPending
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").Return(session, nil)

		_, err := svc.MarkOutcome(context.Background(), 1, "sess-1", OutcomeNoshow)

		assert.ErrorIs(t, err, ErrSessionNotValidated)
		m.processor.AssertNotCalled(t, "ChargeOffSession", mock.Anything, mock.Anything)
	})
}

func TestResendLink(t *testing.T) {
	t.Run("opens a fresh checkout and bumps the reminder count", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.Status = models.StatusPending
		session.ReminderCount = 1
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").Return(session, nil)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)
		m.processor.On("CreateSetupCheckout", mock.Anything, mock.Anything).
			Return(&stripeaccount.SetupCheckout{ID: "cs_2", URL: "https://checkout.example/cs_2"}, nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusPending, models.StatusPending,
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["checkout_session_id"] == "cs_2" && fields["reminder_count"] == 2
			})).Return(nil)
		m.notifier.On("SendCardRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(notification.Result{EmailSent: true})

		res, err := svc.ResendLink(context.Background(), 1, "sess-1")

		assert.NoError(t, err)
		assert.Equal(t, 2, res.ReminderCount)
		assert.Equal(t, "https://guarantee.example.com/guarantee/sess-1", res.GuaranteeURL)
	})

	t.Run("rejects a validated session", func(t *testing.T) {
		svc, m := newTestService()
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").
			Return(validatedSession(), nil)

		_, err := svc.ResendLink(context.Background(), 1, "sess-1")

		assert.ErrorIs(t, err, ErrSessionNotPending)
		m.processor.AssertNotCalled(t, "CreateSetupCheckout", mock.Anything, mock.Anything)
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancels a pending session", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.Status = models.StatusPending
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").Return(session, nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusPending, models.StatusCancelled,
			mock.Anything).Return(nil)

		assert.NoError(t, svc.Cancel(context.Background(), 1, "sess-1"))
	})

	t.Run("rejects a session that already advanced", func(t *testing.T) {
		svc, m := newTestService()
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "sess-1").
			Return(validatedSession(), nil)
		m.sessions.On("UpdateStatusIf", mock.Anything, "sess-1", models.StatusPending, models.StatusCancelled,
			mock.Anything).Return(repositories.ErrStatusConflict)

		assert.ErrorIs(t, svc.Cancel(context.Background(), 1, "sess-1"), ErrSessionNotPending)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc, m := newTestService()
		m.sessions.On("GetByPublicIDForMerchant", mock.Anything, uint(1), "nope").
			Return(nil, repositories.ErrNotFound)

		assert.ErrorIs(t, svc.Cancel(context.Background(), 1, "nope"), ErrSessionNotFound)
	})
}

func TestPublicSession(t *testing.T) {
	t.Run("expired pending session is gone", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.Status = models.StatusPending
		session.CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
		m.sessions.On("GetByPublicID", mock.Anything, "sess-1").Return(session, nil)

		_, err := svc.PublicSession(context.Background(), "sess-1")

		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("validated session stays visible past the window", func(t *testing.T) {
		svc, m := newTestService()
		session := validatedSession()
		session.CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
		m.sessions.On("GetByPublicID", mock.Anything, "sess-1").Return(session, nil)
		m.configs.On("GetByMerchantID", mock.Anything, uint(1)).Return(activeConfig(), nil)

		view, err := svc.PublicSession(context.Background(), "sess-1")

		assert.NoError(t, err)
		assert.Equal(t, models.StatusValidated, view.Status)
		assert.Equal(t, "Chez Test", view.MerchantName)
	})
}

func TestSessionDetails(t *testing.T) {
	svc, m := newTestService()
	session := validatedSession()
	session.Status = models.StatusNoshowCharged
	m.sessions.On("GetByPublicID", mock.Anything, "sess-1").Return(session, nil)
	m.charges.On("ListBySession", mock.Anything, "sess-1").Return([]models.NoshowCharge{
		{GuaranteeSessionID: "sess-1", Status: models.ChargeSucceeded, Amount: 18000},
	}, nil)

	details, err := svc.SessionDetails(context.Background(), "sess-1")

	assert.NoError(t, err)
	assert.Equal(t, "sess-1", details.Session.PublicID)
	assert.Len(t, details.Charges, 1)
}

func TestDashboard(t *testing.T) {
	svc, m := newTestService()
	today := time.Now().Format("2006-01-02")
	sessions := []models.GuaranteeSession{
		{PublicID: "a", Status: models.StatusPending, Date: today},
		{PublicID: "b", Status: models.StatusValidated, Date: "2026-08-20"},
		{PublicID: "c", Status: models.StatusCompleted, Date: "2026-08-19"},
		{PublicID: "d", Status: models.StatusCancelled, Date: today},
	}
	m.sessions.On("ListByMerchantSince", mock.Anything, uint(1), mock.Anything).Return(sessions, nil)

	res, err := svc.Dashboard(context.Background(), 1, "week")

	assert.NoError(t, err)
	assert.Equal(t, "week", res.Period)
	assert.Len(t, res.Pending, 1)
	assert.Len(t, res.Validated, 1)
	assert.Len(t, res.Today, 1)
	assert.Equal(t, 3, res.Total)
	// 2 of 3 non-cancelled sessions advanced past pending.
	assert.InDelta(t, 66.66, res.ValidationRate, 0.1)
}
