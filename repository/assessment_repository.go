package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"limitfree/models"
)

// AssessmentRepository persists questionnaire sessions and scored results.
type AssessmentRepository interface {
	CreateSession(ctx context.Context, session *models.AssessmentSession) error
	GetLatestSession(ctx context.Context, userID string, model models.AssessmentModel, statusFilter ...models.AssessmentStatus) (*models.AssessmentSession, error)
	UpdateSession(ctx context.Context, session *models.AssessmentSession) error
	CreateResult(ctx context.Context, result *models.AssessmentResult) error
	GetLatestResult(ctx context.Context, userID string, model models.AssessmentModel) (*models.AssessmentResult, error)
}

type assessmentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAssessmentRepository creates a gorm-backed AssessmentRepository.
func NewAssessmentRepository(db *gorm.DB, log *zap.Logger) AssessmentRepository {
	return &assessmentRepository{db: db, log: log.Named("AssessmentRepository")}
}

func (r *assessmentRepository) CreateSession(ctx context.Context, session *models.AssessmentSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	if session.Status == "" {
		session.Status = models.AssessmentStatusInProgress
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create %s session for userID %s: %w", session.Model, session.UserID, err)
	}
	r.log.Debug("Created assessment session",
		zap.Uint("id", session.ID),
		zap.String("user_id", session.UserID),
		zap.String("model", string(session.Model)))
	return nil
}

// GetLatestSession returns the most recently updated session for the user and
// model, optionally restricted to one status. Returns nil, nil when none match.
func (r *assessmentRepository) GetLatestSession(ctx context.Context, userID string, model models.AssessmentModel, statusFilter ...models.AssessmentStatus) (*models.AssessmentSession, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND model = ?", userID, model)
	if len(statusFilter) > 0 && statusFilter[0] != "" {
		q = q.Where("status = ?", statusFilter[0])
	}

	var session models.AssessmentSession
	err := q.Order("updated_at desc, id desc").First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve %s session for userID %s: %w", model, userID, err)
	}
	return &session, nil
}

func (r *assessmentRepository) UpdateSession(ctx context.Context, session *models.AssessmentSession) error {
	if session == nil || session.ID == 0 {
		return errors.New("session ID must be provided for update")
	}
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session ID %d: %w", session.ID, err)
	}
	return nil
}

func (r *assessmentRepository) CreateResult(ctx context.Context, result *models.AssessmentResult) error {
	if result == nil {
		return errors.New("result cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to store %s result for userID %s: %w", result.Model, result.UserID, err)
	}
	r.log.Info("Stored assessment result",
		zap.String("id", result.PublicID),
		zap.String("user_id", result.UserID),
		zap.String("model", string(result.Model)))
	return nil
}

// GetLatestResult returns nil, nil when the user has no result for the model.
func (r *assessmentRepository) GetLatestResult(ctx context.Context, userID string, model models.AssessmentModel) (*models.AssessmentResult, error) {
	var result models.AssessmentResult
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND model = ?", userID, model).
		Order("created_at desc, id desc").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve %s result for userID %s: %w", model, userID, err)
	}
	return &result, nil
}
