package handlers

import (
	"errors"

	"resguard/internal/services/guarantee"
	"resguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// PublicHandler serves the unauthenticated customer-facing endpoints.
// Session ids are unguessable uuids; no other lookup is exposed.
type PublicHandler struct {
	guarantees *guarantee.Service
}

func NewPublicHandler(guarantees *guarantee.Service) *PublicHandler {
	return &PublicHandler{guarantees: guarantees}
}

// Session returns the customer-facing session summary. Pending sessions
// past the expiry window come back 410.
func (h *PublicHandler) Session(c *fiber.Ctx) error {
	view, err := h.guarantees.PublicSession(c.Context(), c.Params("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, guarantee.ErrSessionNotFound):
			return response.NotFound(c, "session not found")
		case errors.Is(err, guarantee.ErrSessionExpired):
			return response.Gone(c, "this guarantee link has expired")
		default:
			return response.ServerError(c, "failed to load session")
		}
	}
	return c.JSON(view)
}

// Checkout returns a fresh hosted card-setup URL for a pending session.
func (h *PublicHandler) Checkout(c *fiber.Ctx) error {
	url, err := h.guarantees.PublicCheckout(c.Context(), c.Params("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, guarantee.ErrSessionNotFound):
			return response.NotFound(c, "session not found")
		case errors.Is(err, guarantee.ErrSessionExpired):
			return response.Gone(c, "this guarantee link has expired")
		case errors.Is(err, guarantee.ErrSessionNotPending):
			return response.BadRequest(c, "card details were already provided for this session")
		default:
			return response.ServerError(c, "failed to open checkout")
		}
	}
	return c.JSON(fiber.Map{"checkout_url": url})
}
