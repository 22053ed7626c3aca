// Package main is the entry point for the guarantee API server. It loads
// configuration, connects Postgres and Redis, wires the dependency graph
// and starts the HTTP server.
package main

import (
	"strconv"
	"time"

	"resguard/internal/config"
	"resguard/internal/repositories"
	"resguard/internal/repositories/cache"
	"resguard/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()
	log := config.GetLogger()

	db, err := repositories.NewDB(repositories.DBConfig{
		MaxIdleConns:    config.GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    config.GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	})
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get database instance: %v", err)
	}
	defer sqlDB.Close()
	log.Info("connected to database")

	// Redis is optional; nil client makes the cache a no-op.
	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	})
	if redisClient == nil {
		log.Warn("redis unavailable, public-status caching disabled")
	}
	cacheSvc := cache.NewService(redisClient, 5*time.Minute)
	defer cacheSvc.Close()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key, X-Webhook-Secret",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Rate-limit the unauthenticated endpoints.
	for _, path := range []string{
		"/api/auth/login",
		"/api/guarantee/public",
		"/api/guarantee/status",
	} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        30,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(429).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	routes.SetupRoutes(app, db, cacheSvc, log)

	port := strconv.Itoa(config.GetIntEnv("PORT", 3000))
	log.Infof("listening on :%s", port)
	log.Fatal(app.Listen(":" + port))
}
