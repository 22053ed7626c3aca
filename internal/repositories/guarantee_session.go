package repositories

import (
	"context"
	"time"

	"resguard/internal/models"

	"gorm.io/gorm"
)

// GuaranteeSessionRepository persists guarantee sessions. Status changes go
// through UpdateStatusIf so concurrent transitions cannot clobber each
// other; plain Save is reserved for non-status fields.
type GuaranteeSessionRepository struct {
	db *gorm.DB
}

func NewGuaranteeSessionRepository(db *gorm.DB) *GuaranteeSessionRepository {
	return &GuaranteeSessionRepository{db: db}
}

func (r *GuaranteeSessionRepository) Create(ctx context.Context, s *models.GuaranteeSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GuaranteeSessionRepository) GetByPublicID(ctx context.Context, publicID string) (*models.GuaranteeSession, error) {
	var s models.GuaranteeSession
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&s).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

// GetByPublicIDForMerchant scopes the lookup to the owning merchant.
// A session owned by another merchant is reported as not found, never as
// a permission error.
func (r *GuaranteeSessionRepository) GetByPublicIDForMerchant(ctx context.Context, merchantID uint, publicID string) (*models.GuaranteeSession, error) {
	var s models.GuaranteeSession
	err := r.db.WithContext(ctx).
		Where("public_id = ? AND merchant_id = ?", publicID, merchantID).
		First(&s).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

func (r *GuaranteeSessionRepository) GetByReservationID(ctx context.Context, merchantID uint, reservationID string) (*models.GuaranteeSession, error) {
	var s models.GuaranteeSession
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND reservation_id = ?", merchantID, reservationID).
		First(&s).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

func (r *GuaranteeSessionRepository) GetByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*models.GuaranteeSession, error) {
	var s models.GuaranteeSession
	err := r.db.WithContext(ctx).
		Where("checkout_session_id = ?", checkoutSessionID).
		First(&s).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

func (r *GuaranteeSessionRepository) ListByMerchantSince(ctx context.Context, merchantID uint, since time.Time) ([]models.GuaranteeSession, error) {
	var sessions []models.GuaranteeSession
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND created_at >= ?", merchantID, since).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// UpdateStatusIf transitions the session from one status to another,
// applying extra field updates in the same statement. The WHERE clause on
// the current status is the optimistic guard: if another request already
// advanced the session, zero rows match and ErrStatusConflict is returned.
// The transition is checked against the state machine first; a same-status
// update (checkout refresh, reminder bump) is always allowed.
func (r *GuaranteeSessionRepository) UpdateStatusIf(ctx context.Context, publicID string, from, to models.SessionStatus, fields map[string]interface{}) error {
	if from != to && !from.CanTransition(to) {
		return ErrIllegalTransition
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["status"] = to
	res := r.db.WithContext(ctx).
		Model(&models.GuaranteeSession{}).
		Where("public_id = ? AND status = ?", publicID, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *GuaranteeSessionRepository) Save(ctx context.Context, s *models.GuaranteeSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}
