package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"limitfree/models"
)

// QuotaRepository defines the interface for interacting with guest quota data.
type QuotaRepository interface {
	GetQuota(ctx context.Context, guestUserID string) (*models.GuestQuota, error)
	ReserveQuota(ctx context.Context, guestUserID string, limit int) (bool, error)
	ReleaseQuota(ctx context.Context, guestUserID string) error
}

type quotaRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewQuotaRepository creates a new instance of QuotaRepository.
func NewQuotaRepository(db *gorm.DB, log *zap.Logger) QuotaRepository {
	return &quotaRepository{db: db, log: log.Named("QuotaRepository")}
}

// GetQuota retrieves the current usage for a guest user. An unknown guest
// gets a zero-usage quota and no error.
func (r *quotaRepository) GetQuota(ctx context.Context, guestUserID string) (*models.GuestQuota, error) {
	if guestUserID == "" {
		return nil, errors.New("guest user ID cannot be empty")
	}

	var quota models.GuestQuota
	err := r.db.WithContext(ctx).First(&quota, "guest_user_id = ?", guestUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.GuestQuota{GuestUserID: guestUserID}, nil
		}
		return nil, fmt.Errorf("failed to fetch quota for guestUserID %s: %w", guestUserID, err)
	}
	return &quota, nil
}

// ReserveQuota takes one generation from the guest's allowance if fewer than
// limit are used. The check and the increment are a single conditional
// UPDATE, so concurrent callers can never push usage past limit.
func (r *quotaRepository) ReserveQuota(ctx context.Context, guestUserID string, limit int) (bool, error) {
	if guestUserID == "" {
		return false, errors.New("guest user ID cannot be empty")
	}

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guest_user_id"}},
		DoNothing: true,
	}).Create(&models.GuestQuota{GuestUserID: guestUserID}).Error
	if err != nil {
		return false, fmt.Errorf("failed to create quota for guestUserID %s: %w", guestUserID, err)
	}

	res := db.Model(&models.GuestQuota{}).
		Where("guest_user_id = ? AND generations_used < ?", guestUserID, limit).
		Update("generations_used", gorm.Expr("generations_used + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to reserve quota for guestUserID %s: %w", guestUserID, res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Info("Guest quota exhausted", zap.String("guest_user_id", guestUserID), zap.Int("limit", limit))
		return false, nil
	}
	r.log.Debug("Reserved guest generation", zap.String("guest_user_id", guestUserID))
	return true, nil
}

// ReleaseQuota gives back a generation taken by ReserveQuota. Usage never
// drops below zero.
func (r *quotaRepository) ReleaseQuota(ctx context.Context, guestUserID string) error {
	if guestUserID == "" {
		return errors.New("guest user ID cannot be empty")
	}

	err := r.db.WithContext(ctx).Model(&models.GuestQuota{}).
		Where("guest_user_id = ? AND generations_used > 0", guestUserID).
		Update("generations_used", gorm.Expr("generations_used - 1")).Error
	if err != nil {
		return fmt.Errorf("failed to release quota for guestUserID %s: %w", guestUserID, err)
	}
	r.log.Debug("Released guest generation", zap.String("guest_user_id", guestUserID))
	return nil
}
