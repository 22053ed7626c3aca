package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Merchant is a business account using the guarantee system. Each merchant
// owns exactly one GuaranteeConfig and authenticates either with a JWT
// (dashboard) or with its API key (automation callers).
type Merchant struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	BusinessName string `gorm:"not null" json:"business_name"`
	// AgentID is the public identifier used by the customer-facing widget.
	AgentID      string `gorm:"uniqueIndex;not null" json:"agent_id"`
	APIKey       string `gorm:"uniqueIndex;column:api_key" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetPassword hashes and stores the given plaintext password.
func (m *Merchant) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.Password = string(hash)
	return nil
}

// CheckPassword compares a plaintext password against the stored hash.
func (m *Merchant) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(plain)) == nil
}
