package models

import (
	"time"

	"gorm.io/gorm"
)

// PassionShuttle is one AI-suggested direction the user could explore,
// derived from their interest code and trait profile.
type PassionShuttle struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	UserID       string         `json:"user_id" gorm:"index;not null"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description" gorm:"type:text"`
	CareerAreas  []string       `json:"career_areas" gorm:"serializer:json"`
	MatchReason  string         `json:"match_reason" gorm:"type:text"`
	InterestCode string         `json:"interest_code" gorm:"type:varchar(8)"`
	TopTraits    string         `json:"top_traits" gorm:"type:varchar(16)"`
	Order        int            `json:"order" gorm:"default:0"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for the PassionShuttle model.
func (PassionShuttle) TableName() string {
	return "passion_shuttles"
}
