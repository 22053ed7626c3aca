package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"resguard/internal/utils/response"
)

// MasterKey guards platform endpoints (booking workflow callbacks) with a
// shared secret carried in the X-API-Key header.
func MasterKey(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return response.Error(c, fiber.StatusServiceUnavailable, "master key not configured")
		}
		key := c.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			return response.Error(c, fiber.StatusUnauthorized, "invalid API key")
		}
		return c.Next()
	}
}

// WebhookSecret guards the payment webhook with a shared secret carried in
// the X-Webhook-Secret header. The secret is checked before any state is
// touched.
func WebhookSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return response.Error(c, fiber.StatusServiceUnavailable, "webhook secret not configured")
		}
		key := c.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			return response.Error(c, fiber.StatusUnauthorized, "invalid webhook secret")
		}
		return c.Next()
	}
}
