// Package middleware provides HTTP middleware for the fiber application:
// JWT authentication for the dashboard, API-key authentication for
// automation callers, and shared-secret checks for platform endpoints.
package middleware

import (
	"context"
	"strings"

	"resguard/internal/models"
	"resguard/internal/utils"
	"resguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// MerchantStore resolves merchants during authentication.
type MerchantStore interface {
	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*models.Merchant, error)
}

// AuthMiddleware validates merchant JWTs and adds the claims and merchant
// to the request context.
type AuthMiddleware struct {
	merchants MerchantStore
}

func NewAuthMiddleware(merchants MerchantStore) *AuthMiddleware {
	return &AuthMiddleware{merchants: merchants}
}

// Handler checks for a Bearer token, validates signature and expiry, and
// rejects tokens whose version no longer matches the merchant's current
// version (bumped on password change to revoke outstanding sessions).
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	merchant, err := m.merchants.GetByID(c.Context(), claims.MerchantID)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}
	if claims.TokenVersion != merchant.TokenVersion {
		return response.Error(c, fiber.StatusUnauthorized, "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("merchant", merchant)
	c.Locals("merchantID", merchant.ID)
	return c.Next()
}

// MerchantFromContext returns the authenticated merchant stored by the
// auth or API-key middleware.
func MerchantFromContext(c *fiber.Ctx) (*models.Merchant, bool) {
	merchant, ok := c.Locals("merchant").(*models.Merchant)
	return merchant, ok
}
