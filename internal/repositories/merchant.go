package repositories

import (
	"context"

	"resguard/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository looks up merchant accounts for the auth middleware
// and the public status endpoint.
type MerchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) Create(ctx context.Context, m *models.Merchant) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MerchantRepository) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	var m models.Merchant
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}

func (r *MerchantRepository) GetByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	var m models.Merchant
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}

func (r *MerchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.Merchant, error) {
	if apiKey == "" {
		return nil, ErrNotFound
	}
	var m models.Merchant
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&m).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}

func (r *MerchantRepository) GetByAgentID(ctx context.Context, agentID string) (*models.Merchant, error) {
	var m models.Merchant
	if err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&m).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}
