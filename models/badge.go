package models

import (
	"time"
)

// Badge is awarded once per rank tier a user reaches. The (user_id, name)
// index makes a second award for the same tier a no-op.
type Badge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_badges_user_name,priority:1" json:"user_id"`
	Name     string    `gorm:"not null;uniqueIndex:idx_badges_user_name,priority:2" json:"name"`
	Icon     string    `gorm:"not null" json:"icon"`
	EarnedAt time.Time `gorm:"autoCreateTime;index" json:"earned_at"`
}
