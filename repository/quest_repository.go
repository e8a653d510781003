package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"limitfree/models"
)

// QuestRepository defines the interface for interacting with quest trees and quests.
type QuestRepository interface {
	CreateTree(ctx context.Context, tree *models.QuestTree) error
	GetTreeByID(ctx context.Context, treeID uint) (*models.QuestTree, error)
	GetTreesByUserID(ctx context.Context, userID string) ([]*models.QuestTree, error)
	GetTreeByShuttleID(ctx context.Context, shuttleID uint) (*models.QuestTree, error)
	UpdateTree(ctx context.Context, tree *models.QuestTree) error
	DeleteTree(ctx context.Context, treeID uint, hardDelete bool) error
	CreateQuest(ctx context.Context, quest *models.Quest) error
	GetQuestByID(ctx context.Context, questID uint) (*models.Quest, error)
	UpdateQuest(ctx context.Context, quest *models.Quest) error
}

type questRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewQuestRepository creates a new instance of QuestRepository.
func NewQuestRepository(db *gorm.DB, log *zap.Logger) QuestRepository {
	return &questRepository{db: db, log: log.Named("QuestRepository")}
}

func orderedQuests(db *gorm.DB) *gorm.DB {
	return db.Order("`order` asc, id asc")
}

// CreateTree stores a tree without its quests; children need their parent's
// ID, so quests are inserted one by one with CreateQuest.
func (r *questRepository) CreateTree(ctx context.Context, tree *models.QuestTree) error {
	if tree == nil {
		return errors.New("quest tree cannot be nil")
	}
	if err := r.db.WithContext(ctx).Omit("Quests").Create(tree).Error; err != nil {
		return fmt.Errorf("failed to create quest tree for userID %s: %w", tree.UserID, err)
	}
	r.log.Info("Created quest tree",
		zap.Uint("tree_id", tree.ID),
		zap.String("user_id", tree.UserID),
		zap.Uint("shuttle_id", tree.ShuttleID))
	return nil
}

// GetTreeByID retrieves a tree with its quests. Returns nil, nil when not found.
func (r *questRepository) GetTreeByID(ctx context.Context, treeID uint) (*models.QuestTree, error) {
	var tree models.QuestTree
	err := r.db.WithContext(ctx).Preload("Quests", orderedQuests).First(&tree, treeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve quest tree ID %d: %w", treeID, err)
	}
	return &tree, nil
}

// GetTreesByUserID retrieves all trees for a user, newest first.
func (r *questRepository) GetTreesByUserID(ctx context.Context, userID string) ([]*models.QuestTree, error) {
	var trees []*models.QuestTree
	err := r.db.WithContext(ctx).Preload("Quests", orderedQuests).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&trees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve quest trees for userID %s: %w", userID, err)
	}
	return trees, nil
}

// GetTreeByShuttleID returns nil, nil when the shuttle has no tree yet.
func (r *questRepository) GetTreeByShuttleID(ctx context.Context, shuttleID uint) (*models.QuestTree, error) {
	var tree models.QuestTree
	err := r.db.WithContext(ctx).Preload("Quests", orderedQuests).
		Where("shuttle_id = ?", shuttleID).
		Order("id desc").
		First(&tree).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve quest tree for shuttle ID %d: %w", shuttleID, err)
	}
	return &tree, nil
}

func (r *questRepository) UpdateTree(ctx context.Context, tree *models.QuestTree) error {
	if tree == nil || tree.ID == 0 {
		return errors.New("quest tree ID must be provided for update")
	}
	if err := r.db.WithContext(ctx).Omit("Quests").Save(tree).Error; err != nil {
		return fmt.Errorf("failed to update quest tree ID %d: %w", tree.ID, err)
	}
	return nil
}

// DeleteTree deletes a tree and its quests.
func (r *questRepository) DeleteTree(ctx context.Context, treeID uint, hardDelete bool) error {
	db := r.db.WithContext(ctx)
	action := "soft-delete"
	if hardDelete {
		db = db.Unscoped()
		action = "hard-delete"
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tree_id = ?", treeID).Delete(&models.Quest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.QuestTree{}, treeID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to %s quest tree ID %d: %w", action, treeID, err)
	}
	r.log.Info("Deleted quest tree", zap.Uint("tree_id", treeID), zap.String("action", action))
	return nil
}

func (r *questRepository) CreateQuest(ctx context.Context, quest *models.Quest) error {
	if quest == nil {
		return errors.New("quest cannot be nil")
	}
	if quest.TreeID == 0 {
		return errors.New("quest must be associated with a TreeID")
	}
	if err := r.db.WithContext(ctx).Create(quest).Error; err != nil {
		return fmt.Errorf("failed to create quest '%s' for tree ID %d: %w", quest.Title, quest.TreeID, err)
	}
	return nil
}

// GetQuestByID returns nil, nil when the quest does not exist.
func (r *questRepository) GetQuestByID(ctx context.Context, questID uint) (*models.Quest, error) {
	var quest models.Quest
	err := r.db.WithContext(ctx).First(&quest, questID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve quest ID %d: %w", questID, err)
	}
	return &quest, nil
}

func (r *questRepository) UpdateQuest(ctx context.Context, quest *models.Quest) error {
	if quest == nil || quest.ID == 0 {
		return errors.New("quest ID must be provided for update")
	}
	if err := r.db.WithContext(ctx).Save(quest).Error; err != nil {
		return fmt.Errorf("failed to update quest ID %d: %w", quest.ID, err)
	}
	return nil
}
