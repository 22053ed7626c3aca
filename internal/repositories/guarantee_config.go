package repositories

import (
	"context"
	"errors"

	"resguard/internal/models"

	"gorm.io/gorm"
)

// GuaranteeConfigRepository persists the per-merchant guarantee settings.
type GuaranteeConfigRepository struct {
	db *gorm.DB
}

func NewGuaranteeConfigRepository(db *gorm.DB) *GuaranteeConfigRepository {
	return &GuaranteeConfigRepository{db: db}
}

// GetByMerchantID returns the merchant's config, creating the default row
// on first access so every merchant always has exactly one.
func (r *GuaranteeConfigRepository) GetByMerchantID(ctx context.Context, merchantID uint) (*models.GuaranteeConfig, error) {
	var cfg models.GuaranteeConfig
	err := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.GuaranteeConfig{MerchantID: merchantID}
		if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
			if IsUniqueViolation(err) {
				// Lost the race to another request; read the winner.
				err = r.db.WithContext(ctx).Where("merchant_id = ?", merchantID).First(&cfg).Error
				if err != nil {
					return nil, err
				}
				return &cfg, nil
			}
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *GuaranteeConfigRepository) Save(ctx context.Context, cfg *models.GuaranteeConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// ClearStripeAccount removes the connected account reference and force
// disables the guarantee in a single update, so the config is never left
// enabled without an account.
func (r *GuaranteeConfigRepository) ClearStripeAccount(ctx context.Context, merchantID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.GuaranteeConfig{}).
		Where("merchant_id = ?", merchantID).
		Updates(map[string]interface{}{
			"stripe_account_id": "",
			"enabled":           false,
		}).Error
}
