package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// MerchantClaims are the JWT claims carried by merchant dashboard tokens.
type MerchantClaims struct {
	MerchantID   uint   `json:"merchant_id"`
	Email        string `json:"email"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}
