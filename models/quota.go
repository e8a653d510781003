package models

import "time"

// GuestQuota tracks how many AI generations a guest user has consumed.
type GuestQuota struct {
	GuestUserID     string `gorm:"primaryKey"`
	GenerationsUsed int    `gorm:"default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GuestQuota model.
func (GuestQuota) TableName() string {
	return "guest_quotas"
}
