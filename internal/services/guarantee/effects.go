package guarantee

import (
	"context"

	"resguard/internal/models"
	"resguard/internal/queue"
	"resguard/internal/services/handoff"
	"resguard/internal/services/notification"

	"github.com/sirupsen/logrus"
)

// Effects are the side effects a transition wants executed. Transitions
// build this value; the engine runs it only after the state write commits,
// so notifications and hand-offs never precede durable state. Every effect
// is best-effort: failures are logged and reported, never propagated.
type Effects struct {
	// CardRequestURL, when non-empty, sends the card-request notification
	// pointing at this customer-facing URL.
	CardRequestURL string
	// ValidationConfirmed sends the confirmation notification.
	ValidationConfirmed bool
	// Handoff fires the booking-workflow webhook.
	Handoff bool
	// Events are published to the lifecycle event queue.
	Events []queue.Event
}

// runEffects executes the effects against the session's merchant config.
// merchant may be nil when the lookup failed; the hand-off is then skipped.
func (s *Service) runEffects(ctx context.Context, merchant *models.Merchant, cfg *models.GuaranteeConfig, session *models.GuaranteeSession, fx Effects) notification.Result {
	var res notification.Result

	if fx.CardRequestURL != "" {
		res = s.notifier.SendCardRequest(ctx, cfg, session, fx.CardRequestURL)
	}
	if fx.ValidationConfirmed {
		res = s.notifier.SendValidationConfirmed(ctx, cfg, session)
	}

	if fx.Handoff {
		if merchant == nil {
			s.log.WithFields(logrus.Fields{
				"module":     "guarantee",
				"session_id": session.PublicID,
			}).Warn("merchant unavailable, skipping booking hand-off")
		} else {
			payload, err := handoff.NewPayload(merchant, cfg, session)
			if err == nil {
				err = s.trigger.Book(ctx, payload)
			}
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"module":     "guarantee",
					"session_id": session.PublicID,
				}).Warnf("booking hand-off failed: %v", err)
			}
		}
	}

	for _, event := range fx.Events {
		// Publisher logs its own failures.
		_ = s.events.Publish(ctx, event)
	}

	return res
}
