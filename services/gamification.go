package services

import (
	"context"
	"errors"
	"fmt"

	"waste-hunt-api/metrics"
	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/sirupsen/logrus"
)

// RankChange describes a promotion won by one tip submission. Badges holds
// one badge per tier crossed.
type RankChange struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Badges []models.Badge `json:"badges"`
}

// TipRewards is everything a single tip submission earned.
type TipRewards struct {
	PointsAwarded int64                `json:"points_awarded"`
	Achievements  []models.Achievement `json:"achievements"`
	RankChange    *RankChange          `json:"rank_change,omitempty"`
}

// GamificationService turns tip submissions into points, achievements,
// ranks and badges. It keeps no state; grants rely on the ledger's
// insert-if-absent and compare-and-swap operations.
type GamificationService struct {
	Store store.Ledger
	Log   logrus.FieldLogger
}

func NewGamificationService(ledger store.Ledger, log logrus.FieldLogger) *GamificationService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GamificationService{Store: ledger, Log: log}
}

// ProcessTipSubmission applies the rewards for one tip. On error the
// returned rewards hold whatever was applied before the failing step;
// nothing is retried.
func (s *GamificationService) ProcessTipSubmission(ctx context.Context, userID uint, amount int64) (*TipRewards, error) {
	rewards := &TipRewards{Achievements: []models.Achievement{}}

	if err := s.Store.IncrementTipCount(ctx, userID); err != nil {
		return rewards, fmt.Errorf("count tip: %w", err)
	}

	if err := s.grant(ctx, userID, models.AchievementFirstTip, rewards); err != nil {
		return rewards, err
	}
	if amount >= BigFishAmount {
		if err := s.grant(ctx, userID, models.AchievementHighImpact, rewards); err != nil {
			return rewards, err
		}
	}

	points := PointsForTip(amount)
	if err := s.Store.AddPoints(ctx, userID, points); err != nil {
		return rewards, fmt.Errorf("award points: %w", err)
	}
	rewards.PointsAwarded = points
	metrics.RecordTip(points)

	change, err := s.promote(ctx, userID)
	rewards.RankChange = change
	if err != nil {
		return rewards, err
	}

	s.Log.WithFields(logrus.Fields{
		"user_id":      userID,
		"amount":       amount,
		"points":       points,
		"achievements": len(rewards.Achievements),
	}).Info("🎮 Tip rewards applied")
	return rewards, nil
}

func (s *GamificationService) grant(ctx context.Context, userID uint, t models.AchievementType, rewards *TipRewards) error {
	def, ok := models.LookupAchievement(t)
	if !ok {
		return fmt.Errorf("grant %s: unknown achievement", t)
	}
	a := def.For(userID)
	inserted, err := s.Store.AddAchievement(ctx, a)
	if err != nil {
		return fmt.Errorf("grant %s: %w", t, err)
	}
	if !inserted {
		metrics.RecordDuplicateGrant("achievement")
		return nil
	}
	rewards.Achievements = append(rewards.Achievements, *a)
	metrics.RecordAchievement(string(t))
	s.Log.WithFields(logrus.Fields{"user_id": userID, "achievement": t}).Info("🏆 Achievement unlocked")
	return nil
}

// promote moves the stored rank up to RankFor(points). A lost swap means a
// concurrent call already moved the rank, so the user is re-read; ranks only
// rise, which bounds the loop by the number of tiers.
func (s *GamificationService) promote(ctx context.Context, userID uint) (*RankChange, error) {
	for range RankTiers {
		user, err := s.Store.GetUser(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			s.Log.WithField("user_id", userID).Warn("rank check skipped: user not found")
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load user for rank: %w", err)
		}

		next := RankFor(user.Points)
		if next == user.Rank {
			return nil, nil
		}

		won, err := s.Store.SwapRank(ctx, userID, user.Rank, next)
		if err != nil {
			return nil, fmt.Errorf("update rank: %w", err)
		}
		if !won {
			metrics.RecordDuplicateGrant("rank")
			continue
		}

		change := &RankChange{From: user.Rank, To: next, Badges: []models.Badge{}}
		for _, tier := range TiersCrossed(user.Rank, next) {
			badge := &models.Badge{UserID: userID, Name: tier.Title, Icon: BadgeIcon(tier.Title)}
			inserted, err := s.Store.AddBadge(ctx, badge)
			if err != nil {
				return change, fmt.Errorf("grant badge %s: %w", tier.Title, err)
			}
			if !inserted {
				metrics.RecordDuplicateGrant("badge")
				continue
			}
			change.Badges = append(change.Badges, *badge)
			metrics.RecordBadge(tier.Title)
		}

		s.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"from":    change.From,
			"to":      change.To,
			"points":  user.Points,
		}).Info("🏅 Rank up")
		return change, nil
	}
	return nil, nil
}
