package repositories

import (
	"context"

	"resguard/internal/models"

	"gorm.io/gorm"
)

// NoshowChargeRepository stores penalty charge attempts. Append-only.
type NoshowChargeRepository struct {
	db *gorm.DB
}

func NewNoshowChargeRepository(db *gorm.DB) *NoshowChargeRepository {
	return &NoshowChargeRepository{db: db}
}

func (r *NoshowChargeRepository) Create(ctx context.Context, c *models.NoshowCharge) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *NoshowChargeRepository) ListBySession(ctx context.Context, sessionPublicID string) ([]models.NoshowCharge, error) {
	var charges []models.NoshowCharge
	err := r.db.WithContext(ctx).
		Where("guarantee_session_id = ?", sessionPublicID).
		Order("created_at ASC").
		Find(&charges).Error
	return charges, err
}
