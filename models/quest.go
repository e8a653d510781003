package models

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// QuestTreeStatus defines the possible statuses for a quest tree.
type QuestTreeStatus string

const (
	QuestTreeStatusActive    QuestTreeStatus = "active"
	QuestTreeStatusCompleted QuestTreeStatus = "completed"
)

// QuestTree is the mission map generated for one passion shuttle.
type QuestTree struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	UserID      string          `json:"user_id" gorm:"index;not null"`
	ShuttleID   uint            `json:"shuttle_id" gorm:"index;not null"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text"`
	Status      QuestTreeStatus `json:"status" gorm:"type:varchar(32);default:'active';not null"`
	CompletedAt sql.NullTime   `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
	Quests      []Quest         `json:"quests" gorm:"foreignKey:TreeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName specifies the table name for the QuestTree model.
func (QuestTree) TableName() string {
	return "quest_trees"
}

// Difficulty grades a quest and decides its energy reward.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestStatus defines the possible statuses for a quest.
type QuestStatus string

const (
	QuestStatusPending   QuestStatus = "pending"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusSkipped   QuestStatus = "skipped"
)

// Quest is a node in a QuestTree. Root missions have a nil ParentID.
type Quest struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	TreeID       uint           `json:"tree_id" gorm:"index;not null"`
	ParentID     *uint          `json:"parent_id,omitempty" gorm:"index"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Difficulty   Difficulty     `json:"difficulty" gorm:"type:varchar(16);default:'easy';not null"`
	EnergyReward int            `json:"energy_reward"`
	Status       QuestStatus    `json:"status" gorm:"type:varchar(32);default:'pending';not null"`
	CompletedAt  sql.NullTime  `json:"completed_at"`
	Order        int            `json:"order" gorm:"default:0"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for the Quest model.
func (Quest) TableName() string {
	return "quests"
}
