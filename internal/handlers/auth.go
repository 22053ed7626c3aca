// Package handlers contains the fiber HTTP handlers. Handlers parse and
// validate requests, delegate to services, and map service errors to HTTP
// status codes; they hold no business logic.
package handlers

import (
	"context"

	"resguard/internal/models"
	"resguard/internal/utils"
	"resguard/internal/utils/response"
	"resguard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// MerchantReader is the merchant lookup used by the login handler.
type MerchantReader interface {
	GetByEmail(ctx context.Context, email string) (*models.Merchant, error)
}

type AuthHandler struct {
	merchants MerchantReader
}

func NewAuthHandler(merchants MerchantReader) *AuthHandler {
	return &AuthHandler{merchants: merchants}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies the merchant's credentials and issues a dashboard token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if errs := validation.Struct(input); errs != nil {
		return response.ValidationError(c, errs)
	}

	merchant, err := h.merchants.GetByEmail(c.Context(), input.Email)
	if err != nil || !merchant.CheckPassword(input.Password) {
		return response.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(merchant)
	if err != nil {
		return response.ServerError(c, "failed to issue token")
	}

	return response.Success(c, "Login successful", fiber.Map{
		"token":    token,
		"merchant": merchant,
	})
}
