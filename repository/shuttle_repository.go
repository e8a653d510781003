package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"limitfree/models"
)

// ShuttleRepository persists passion shuttles.
type ShuttleRepository interface {
	// ReplaceForUser soft-deletes the user's existing shuttles and stores the new set.
	ReplaceForUser(ctx context.Context, userID string, shuttles []*models.PassionShuttle) error
	GetByID(ctx context.Context, id uint) (*models.PassionShuttle, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.PassionShuttle, error)
}

type shuttleRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewShuttleRepository creates a gorm-backed ShuttleRepository.
func NewShuttleRepository(db *gorm.DB, log *zap.Logger) ShuttleRepository {
	return &shuttleRepository{db: db, log: log.Named("ShuttleRepository")}
}

func (r *shuttleRepository) ReplaceForUser(ctx context.Context, userID string, shuttles []*models.PassionShuttle) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.PassionShuttle{}).Error; err != nil {
			return err
		}
		if len(shuttles) == 0 {
			return nil
		}
		for i, s := range shuttles {
			s.UserID = userID
			s.Order = i
		}
		return tx.Create(&shuttles).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store shuttles for userID %s: %w", userID, err)
	}
	r.log.Info("Stored passion shuttles", zap.String("user_id", userID), zap.Int("count", len(shuttles)))
	return nil
}

// GetByID returns nil, nil when the shuttle does not exist.
func (r *shuttleRepository) GetByID(ctx context.Context, id uint) (*models.PassionShuttle, error) {
	var shuttle models.PassionShuttle
	err := r.db.WithContext(ctx).First(&shuttle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve shuttle ID %d: %w", id, err)
	}
	return &shuttle, nil
}

func (r *shuttleRepository) ListByUserID(ctx context.Context, userID string) ([]*models.PassionShuttle, error) {
	var shuttles []*models.PassionShuttle
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("`order` asc, id asc").Find(&shuttles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve shuttles for userID %s: %w", userID, err)
	}
	return shuttles, nil
}
