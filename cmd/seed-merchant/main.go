// Command seed-merchant creates a merchant account with a fresh agent id
// and API key. Intended for local setup and onboarding scripts.
package main

import (
	"fmt"
	"log"
	"os"

	"resguard/internal/config"
	"resguard/internal/models"
	"resguard/internal/repositories"

	"github.com/google/uuid"
)

func main() {
	config.LoadEnv()

	email := os.Getenv("MERCHANT_EMAIL")
	password := os.Getenv("MERCHANT_PASSWORD")
	businessName := os.Getenv("MERCHANT_BUSINESS_NAME")
	if email == "" || password == "" || businessName == "" {
		log.Fatal("MERCHANT_EMAIL, MERCHANT_PASSWORD and MERCHANT_BUSINESS_NAME must be set")
	}

	db, err := repositories.NewDB(repositories.DefaultDBConfig)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var existing models.Merchant
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("merchant already exists")
		fmt.Printf("agent_id: %s\n", existing.AgentID)
		return
	}

	merchant := models.Merchant{
		Email:        email,
		BusinessName: businessName,
		AgentID:      uuid.NewString(),
		APIKey:       uuid.NewString(),
	}
	if err := merchant.SetPassword(password); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(&merchant).Error; err != nil {
		log.Fatalf("failed to create merchant: %v", err)
	}

	log.Println("merchant created")
	fmt.Printf("agent_id: %s\napi_key: %s\n", merchant.AgentID, merchant.APIKey)
}
