package guarantee

import (
	"context"
	"time"

	"resguard/internal/models"
	"resguard/internal/queue"
	"resguard/internal/services/handoff"
	"resguard/internal/services/notification"
)

// SessionStore is the slice of the session repository the engine needs.
// The store is the single source of truth; the engine never caches
// session state across requests.
type SessionStore interface {
	Create(ctx context.Context, s *models.GuaranteeSession) error
	GetByPublicID(ctx context.Context, publicID string) (*models.GuaranteeSession, error)
	GetByPublicIDForMerchant(ctx context.Context, merchantID uint, publicID string) (*models.GuaranteeSession, error)
	GetByReservationID(ctx context.Context, merchantID uint, reservationID string) (*models.GuaranteeSession, error)
	GetByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*models.GuaranteeSession, error)
	ListByMerchantSince(ctx context.Context, merchantID uint, since time.Time) ([]models.GuaranteeSession, error)
	UpdateStatusIf(ctx context.Context, publicID string, from, to models.SessionStatus, fields map[string]interface{}) error
	Save(ctx context.Context, s *models.GuaranteeSession) error
}

// ChargeStore records penalty charge attempts.
type ChargeStore interface {
	Create(ctx context.Context, c *models.NoshowCharge) error
	ListBySession(ctx context.Context, sessionPublicID string) ([]models.NoshowCharge, error)
}

// ConfigStore reads merchant guarantee configuration.
type ConfigStore interface {
	GetByMerchantID(ctx context.Context, merchantID uint) (*models.GuaranteeConfig, error)
}

// MerchantStore resolves merchants for hand-off payloads and the public
// status endpoint.
type MerchantStore interface {
	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	GetByAgentID(ctx context.Context, agentID string) (*models.Merchant, error)
}

// Notifier dispatches lifecycle notifications, best-effort.
type Notifier interface {
	SendCardRequest(ctx context.Context, cfg *models.GuaranteeConfig, session *models.GuaranteeSession, guaranteeURL string) notification.Result
	SendValidationConfirmed(ctx context.Context, cfg *models.GuaranteeConfig, session *models.GuaranteeSession) notification.Result
}

// BookingTrigger fires the outbound booking hand-off, best-effort.
type BookingTrigger interface {
	Book(ctx context.Context, payload *handoff.BookingPayload) error
}

// EventPublisher emits lifecycle events, best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}
