package middleware

import (
	"github.com/gofiber/fiber/v2"

	"resguard/internal/utils/response"
)

// APIKeyMiddleware authenticates automation callers with the merchant's
// X-API-Key header and adds the merchant to the request context.
type APIKeyMiddleware struct {
	merchants MerchantStore
}

func NewAPIKeyMiddleware(merchants MerchantStore) *APIKeyMiddleware {
	return &APIKeyMiddleware{merchants: merchants}
}

func (m *APIKeyMiddleware) Handler(c *fiber.Ctx) error {
	apiKey := c.Get("X-API-Key")
	if apiKey == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing API key")
	}

	merchant, err := m.merchants.GetByAPIKey(c.Context(), apiKey)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid API key")
	}

	c.Locals("merchant", merchant)
	c.Locals("merchantID", merchant.ID)
	return c.Next()
}
