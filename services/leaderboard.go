package services

import (
	"context"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultLeaderboardLimit = 5
	MaxLeaderboardLimit     = 100
	DetailedLeaderboardSize = 10
)

// LeaderboardEntry is a user enriched for the detailed leaderboard. The
// user's own fields are flattened into the JSON object.
type LeaderboardEntry struct {
	models.User
	Achievements     []models.Achievement `json:"achievements"`
	Badges           []models.Badge       `json:"badges"`
	VerificationRate float64              `json:"verification_rate"`
	TotalImpact      int64                `json:"total_impact"`
	TipCount         int64                `json:"tip_count"`
}

type LeaderboardService struct {
	Store store.Ledger
}

func NewLeaderboardService(ledger store.Ledger) *LeaderboardService {
	return &LeaderboardService{Store: ledger}
}

// ClampLimit maps a missing or non-positive limit to the default and caps
// large ones.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]models.User, error) {
	return s.Store.TopUsers(ctx, ClampLimit(limit))
}

func (s *LeaderboardService) Weekly(ctx context.Context, limit int) ([]models.User, error) {
	return s.Store.WeeklyLeaders(ctx, ClampLimit(limit))
}

// Detailed returns the top users by points, each with achievements, badges
// and tip statistics. Per-user reads run concurrently.
func (s *LeaderboardService) Detailed(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.Store.TopUsers(ctx, DetailedLeaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	g, gctx := errgroup.WithContext(ctx)
	for i := range users {
		entry := &entries[i]
		entry.User = users[i]
		userID := users[i].ID

		g.Go(func() error {
			achievements, err := s.Store.ListAchievements(gctx, userID)
			entry.Achievements = nonNil(achievements)
			return err
		})
		g.Go(func() error {
			badges, err := s.Store.ListBadges(gctx, userID)
			entry.Badges = nonNil(badges)
			return err
		})
		g.Go(func() error {
			stats, err := s.Store.UserStats(gctx, userID)
			if err != nil {
				return err
			}
			entry.VerificationRate = stats.VerificationRate()
			entry.TotalImpact = stats.TotalImpact
			entry.TipCount = stats.TotalTips
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
