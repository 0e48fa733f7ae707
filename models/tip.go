package models

import (
	"time"
)

// Tip is a user-submitted waste report. Verified is a counter; a tip with
// Verified > 0 counts as verified.
type Tip struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Location    string    `gorm:"not null" json:"location"`
	Verified    int       `gorm:"default:0;not null" json:"verified"`
	ImpactScore int       `gorm:"default:0;not null" json:"impact_score"`
	Evidence    *string   `gorm:"type:text" json:"evidence,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Tip) TableName() string {
	return "waste_tips"
}
