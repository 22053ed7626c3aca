package handlers

import (
	"resguard/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler reports database and cache connectivity.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Service
}

func NewHealthHandler(db *gorm.DB, cacheSvc *cache.Service) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheSvc}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	overall := "ok"
	dbState := "connected"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
		dbState = "unavailable"
		overall = "degraded"
		status = fiber.StatusServiceUnavailable
	}

	// Redis is optional; a missing cache degrades reads, it does not make
	// the service unhealthy.
	redisState := "connected"
	if err := h.cache.HealthCheck(c.Context()); err != nil {
		redisState = "unavailable"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"services": fiber.Map{
			"database": dbState,
			"redis":    redisState,
		},
	})
}
