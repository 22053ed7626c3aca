package handlers

import (
	"errors"

	"resguard/internal/services/guarantee"
	"resguard/internal/utils/response"
	"resguard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler serves the payment webhook and the booking-workflow
// endpoints. The shared secrets are enforced by middleware before any of
// these run.
type WebhookHandler struct {
	guarantees *guarantee.Service
}

func NewWebhookHandler(guarantees *guarantee.Service) *WebhookHandler {
	return &WebhookHandler{guarantees: guarantees}
}

type checkoutCompletePayload struct {
	Type              string `json:"type" validate:"required,eq=checkout.completed"`
	CheckoutSessionID string `json:"checkout_session_id" validate:"required"`
}

// CheckoutComplete processes the card-setup completion notification. The
// claim is never trusted: the engine re-verifies the checkout against the
// payment processor before transitioning. Duplicate deliveries come back
// 200 with already:true.
func (h *WebhookHandler) CheckoutComplete(c *fiber.Ctx) error {
	var payload checkoutCompletePayload
	if err := c.BodyParser(&payload); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if errs := validation.Struct(payload); errs != nil {
		return response.ValidationError(c, errs)
	}

	res, err := h.guarantees.HandleCheckoutComplete(c.Context(), payload.CheckoutSessionID)
	if err != nil {
		switch {
		case errors.Is(err, guarantee.ErrSessionNotFound):
			return response.NotFound(c, "no session for this checkout")
		case errors.Is(err, guarantee.ErrCheckoutNotComplete):
			return response.BadRequest(c, "checkout session is not complete")
		default:
			return response.ServerError(c, "failed to process checkout completion")
		}
	}
	return c.JSON(res)
}

// SessionDetails returns the full session and charge history for the
// booking workflow.
func (h *WebhookHandler) SessionDetails(c *fiber.Ctx) error {
	details, err := h.guarantees.SessionDetails(c.Context(), c.Params("sessionId"))
	if err != nil {
		if errors.Is(err, guarantee.ErrSessionNotFound) {
			return response.NotFound(c, "session not found")
		}
		return response.ServerError(c, "failed to load session")
	}
	return c.JSON(details)
}

type confirmBookingPayload struct {
	SessionID string `json:"session_id" validate:"required"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
}

// ConfirmBooking records the booking workflow's outcome. Guarantee state
// is never mutated here.
func (h *WebhookHandler) ConfirmBooking(c *fiber.Ctx) error {
	var payload confirmBookingPayload
	if err := c.BodyParser(&payload); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if errs := validation.Struct(payload); errs != nil {
		return response.ValidationError(c, errs)
	}

	if err := h.guarantees.ConfirmBooking(c.Context(), payload.SessionID, payload.Success, payload.Message); err != nil {
		if errors.Is(err, guarantee.ErrSessionNotFound) {
			return response.NotFound(c, "session not found")
		}
		return response.ServerError(c, "failed to record booking confirmation")
	}
	return response.Success(c, "Booking confirmation recorded", nil)
}
