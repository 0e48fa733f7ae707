package models

// DefaultRank is the rank every hunter starts with.
const DefaultRank = "Rookie"

// User is a registered hunter. Points, WeeklyPoints and TotalTips only move
// through relative increments; Rank is a cached value derived from Points.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Points       int64  `gorm:"default:0;not null;index" json:"points"`
	Rank         string `gorm:"default:'Rookie';not null" json:"rank"`
	TotalTips    int64  `gorm:"default:0;not null" json:"total_tips"`
	WeeklyPoints int64  `gorm:"default:0;not null;index" json:"weekly_points"`
}

// UserStats aggregates a user's tips.
type UserStats struct {
	TotalImpact  int64 `json:"total_impact"`
	VerifiedTips int64 `json:"verified_tips"`
	TotalTips    int64 `json:"total_tips"`
}

// VerificationRate is verified/total as a percentage, 0 when there are no tips.
func (s UserStats) VerificationRate() float64 {
	if s.TotalTips == 0 {
		return 0
	}
	return float64(s.VerifiedTips) / float64(s.TotalTips) * 100
}
