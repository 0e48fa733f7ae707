package services

import (
	"github.com/gosimple/slug"
)

// RankTier is one step of the rank ladder.
type RankTier struct {
	Threshold int64  `json:"threshold"`
	Title     string `json:"title"`
}

// RankTiers is ordered by ascending threshold. The first tier starts at 0.
var RankTiers = []RankTier{
	{Threshold: 0, Title: "Rookie"},
	{Threshold: 100, Title: "Waste Investigator"},
	{Threshold: 500, Title: "Waste Hunter"},
	{Threshold: 1000, Title: "Elite Hunter"},
	{Threshold: 5000, Title: "Waste Legend"},
}

// Point awards per tip. Bonuses stack: a tip at or above BigFishAmount
// earns BasePoints+BigFishBonus, at or above WhaleAmount it also earns
// WhaleBonus.
const (
	BasePoints    int64 = 10
	BigFishBonus  int64 = 20
	WhaleBonus    int64 = 50
	BigFishAmount int64 = 1_000_000
	WhaleAmount   int64 = 10_000_000
)

// RankFor returns the title of the highest tier whose threshold is <= points.
func RankFor(points int64) string {
	title := RankTiers[0].Title
	for _, tier := range RankTiers {
		if points < tier.Threshold {
			break
		}
		title = tier.Title
	}
	return title
}

func tierIndex(title string) int {
	for i, tier := range RankTiers {
		if tier.Title == title {
			return i
		}
	}
	return -1
}

// TiersCrossed lists the tiers above from, up to and including to. An
// unknown from is treated as below the ladder. Demotions cross nothing.
func TiersCrossed(from, to string) []RankTier {
	lo, hi := tierIndex(from), tierIndex(to)
	if hi < 0 || hi <= lo {
		return nil
	}
	return append([]RankTier(nil), RankTiers[lo+1:hi+1]...)
}

// PointsForTip is 10, 30 or 80 depending on the reported amount.
func PointsForTip(amount int64) int64 {
	points := BasePoints
	if amount >= BigFishAmount {
		points += BigFishBonus
	}
	if amount >= WhaleAmount {
		points += WhaleBonus
	}
	return points
}

// BadgeIcon is the icon key of the badge for a rank, e.g.
// "rank-waste-investigator".
func BadgeIcon(rankTitle string) string {
	return "rank-" + slug.Make(rankTitle)
}
