package handlers

import (
	"errors"

	"resguard/internal/middleware"
	"resguard/internal/services/guarantee"
	"resguard/internal/utils/response"
	"resguard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler serves the automation endpoints (check-status,
// create-session) and the dashboard reservation endpoints.
type SessionHandler struct {
	guarantees *guarantee.Service
}

func NewSessionHandler(guarantees *guarantee.Service) *SessionHandler {
	return &SessionHandler{guarantees: guarantees}
}

// CheckStatus tells an automation caller whether guarantees are active and
// under which rules, without creating anything.
func (h *SessionHandler) CheckStatus(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	res, err := h.guarantees.CheckStatus(c.Context(), merchant.ID)
	if err != nil {
		return response.ServerError(c, "failed to check guarantee status")
	}
	return c.JSON(res)
}

// CreateSession opens a guarantee session for a reservation. Idempotent on
// reservation_id: repeats return the existing session.
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input guarantee.CreateSessionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if errs := validation.Struct(input); errs != nil {
		return response.ValidationError(c, errs)
	}

	res, err := h.guarantees.CreateSession(c.Context(), merchant, input)
	if err != nil {
		return response.ServerError(c, "failed to create guarantee session")
	}
	return c.JSON(res)
}

// Reservations returns the dashboard buckets for a period
// (today, week or month).
func (h *SessionHandler) Reservations(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	res, err := h.guarantees.Dashboard(c.Context(), merchant.ID, c.Query("period", "month"))
	if err != nil {
		return response.ServerError(c, "failed to load reservations")
	}
	return c.JSON(res)
}

type outcomeInput struct {
	Status string `json:"status" validate:"required,oneof=attended noshow"`
}

// UpdateReservationStatus applies the staff-reported attendance outcome.
// Processor declines come back 200 with charged:false and the failure
// reason; the attempt is recorded either way.
func (h *SessionHandler) UpdateReservationStatus(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input outcomeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if errs := validation.Struct(input); errs != nil {
		return response.ValidationError(c, errs)
	}

	res, err := h.guarantees.MarkOutcome(c.Context(), merchant.ID, c.Params("id"), guarantee.Outcome(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, guarantee.ErrSessionNotFound):
			return response.NotFound(c, "session not found")
		case errors.Is(err, guarantee.ErrSessionNotValidated):
			return response.Conflict(c, "session is not validated")
		case errors.Is(err, guarantee.ErrInvalidOutcome):
			return response.BadRequest(c, err.Error())
		default:
			return response.ServerError(c, "failed to update reservation status")
		}
	}
	return c.JSON(res)
}

// Resend opens a fresh checkout for a pending session and re-sends the
// card-request link.
func (h *SessionHandler) Resend(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	res, err := h.guarantees.ResendLink(c.Context(), merchant.ID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, guarantee.ErrSessionNotFound):
			return response.NotFound(c, "session not found")
		case errors.Is(err, guarantee.ErrSessionNotPending):
			return response.Conflict(c, "session is no longer pending")
		default:
			return response.ServerError(c, "failed to resend guarantee link")
		}
	}
	return c.JSON(res)
}

// Cancel closes a pending session.
func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	err := h.guarantees.Cancel(c.Context(), merchant.ID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, guarantee.ErrSessionNotFound):
			return response.NotFound(c, "session not found")
		case errors.Is(err, guarantee.ErrSessionNotPending):
			return response.Conflict(c, "session is no longer pending")
		default:
			return response.ServerError(c, "failed to cancel session")
		}
	}
	return response.Success(c, "Session cancelled", nil)
}
