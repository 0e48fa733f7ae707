package models

import (
	"time"
)

// AchievementType is the stored key of an achievement.
type AchievementType string

const (
	AchievementFirstTip    AchievementType = "first_tip"
	AchievementTipStreak   AchievementType = "tip_streak"
	AchievementHighImpact  AchievementType = "high_impact"
	AchievementViralHunter AchievementType = "viral_hunter"
)

// Achievement is a one-time milestone. At most one row exists per
// (user_id, type).
type Achievement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;uniqueIndex:idx_achievements_user_type,priority:1" json:"user_id"`
	Type        AchievementType `gorm:"type:varchar(32);not null;uniqueIndex:idx_achievements_user_type,priority:2" json:"type"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"not null" json:"description"`
	EarnedAt    time.Time       `gorm:"autoCreateTime;index" json:"earned_at"`
}

// AchievementDefinition is a catalog entry.
type AchievementDefinition struct {
	Key         string          `json:"key"`
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	// Evaluated is false for entries no rule grants yet.
	Evaluated bool `json:"evaluated"`
}

// AchievementCatalog is the closed set of achievements.
var AchievementCatalog = []AchievementDefinition{
	{
		Key:         "FIRST_TIP",
		Type:        AchievementFirstTip,
		Title:       "First Strike",
		Description: "Submit your first waste tip",
		Evaluated:   true,
	},
	{
		Key:         "TIP_STREAK",
		Type:        AchievementTipStreak,
		Title:       "On a Roll",
		Description: "Submit 5 tips in a week",
	},
	{
		Key:         "HIGH_IMPACT",
		Type:        AchievementHighImpact,
		Title:       "Big Fish",
		Description: "Report waste over $1M",
		Evaluated:   true,
	},
	{
		Key:         "VIRAL_HUNTER",
		Type:        AchievementViralHunter,
		Title:       "Viral Hunter",
		Description: "Get 100 shares on your tips",
	},
}

// LookupAchievement returns the catalog entry for t.
func LookupAchievement(t AchievementType) (AchievementDefinition, bool) {
	for _, def := range AchievementCatalog {
		if def.Type == t {
			return def, true
		}
	}
	return AchievementDefinition{}, false
}

// For builds the row granting this achievement to userID.
func (d AchievementDefinition) For(userID uint) *Achievement {
	return &Achievement{
		UserID:      userID,
		Type:        d.Type,
		Title:       d.Title,
		Description: d.Description,
	}
}
