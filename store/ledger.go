// Package store persists users, reports, tips, achievements, badges and
// comments. Every write is a single statement; counters move through
// relative increments and grants are insert-if-absent.
package store

import (
	"context"
	"errors"
	"time"

	"waste-hunt-api/models"
)

var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("already exists")
	// ErrFailure wraps any other backend error (connectivity, constraint).
	ErrFailure = errors.New("store failure")
)

// Ledger is the full set of persistence operations the API needs.
type Ledger interface {
	// Reports
	ListReports(ctx context.Context) ([]models.Report, error)
	AddReport(ctx context.Context, r *models.Report) error
	IncrementShares(ctx context.Context, reportID uint) error
	PromoteTip(ctx context.Context, tip *models.Tip, year int) (*models.Report, error)

	// Users
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	TopUsers(ctx context.Context, limit int) ([]models.User, error)
	WeeklyLeaders(ctx context.Context, limit int) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	AddPoints(ctx context.Context, userID uint, points int64) error
	// SwapRank sets the rank only if it still equals from and reports
	// whether this call changed it.
	SwapRank(ctx context.Context, userID uint, from, to string) (bool, error)
	IncrementTipCount(ctx context.Context, userID uint) error
	ResetWeeklyPoints(ctx context.Context) (int64, error)

	// Tips
	SubmitTip(ctx context.Context, tip *models.Tip) error
	ListTips(ctx context.Context) ([]models.Tip, error)
	UpdateTipImpact(ctx context.Context, tipID uint, impactScore int) error
	VerifyTip(ctx context.Context, tipID uint) error

	// Achievements and badges. Add* report whether a row was inserted;
	// false means the user already had it.
	ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error)
	AddAchievement(ctx context.Context, a *models.Achievement) (bool, error)
	ListBadges(ctx context.Context, userID uint) ([]models.Badge, error)
	AddBadge(ctx context.Context, b *models.Badge) (bool, error)

	// Aggregates
	TotalImpact(ctx context.Context) (int64, error)
	TipOfTheDay(ctx context.Context) (*models.Report, error)
	ActiveHunters(ctx context.Context, since time.Time) (int64, error)
	UserStats(ctx context.Context, userID uint) (*models.UserStats, error)

	// Comments
	ListComments(ctx context.Context) ([]models.Comment, error)
	AddComment(ctx context.Context, c *models.Comment) error
}

// promotedReport builds the public listing for a submitted tip.
func promotedReport(tip *models.Tip, year int) *models.Report {
	return &models.Report{
		Title:       tip.Title,
		Description: tip.Description,
		Amount:      tip.Amount,
		Location:    tip.Location,
		Year:        year,
		Evidence:    tip.Evidence,
		Source:      models.SourceUserSubmitted,
	}
}
