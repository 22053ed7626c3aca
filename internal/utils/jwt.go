package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"resguard/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken signs a merchant dashboard access token. The JWT secret is
// expected in the environment variable JWT_SECRET.
func GenerateToken(merchant *models.Merchant) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", errors.New("JWT_SECRET not configured")
	}

	now := time.Now()
	claims := models.MerchantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "resguard-api",
			Subject:   strconv.FormatUint(uint64(merchant.ID), 10),
		},
		MerchantID:   merchant.ID,
		Email:        merchant.Email,
		TokenVersion: merchant.TokenVersion,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ParseToken parses and validates a merchant token string.
func ParseToken(tokenStr string) (*models.MerchantClaims, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.MerchantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.MerchantClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
