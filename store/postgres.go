package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waste-hunt-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Postgres is the GORM-backed Ledger.
type Postgres struct {
	DB *gorm.DB
}

var _ Ledger = (*Postgres)(nil)

// GormConfig is shared by OpenPostgres and tests. Single statements don't
// need GORM's implicit transaction.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	}
}

// OpenPostgres connects and migrates the schema.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.Tip{},
		&models.Achievement{},
		&models.Badge{},
		&models.Comment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewPostgres(db), nil
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{DB: db}
}

func fail(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrFailure, err)
}

// --- Reports ---

func (s *Postgres) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&reports).Error; err != nil {
		return nil, fail("list reports", err)
	}
	return reports, nil
}

func (s *Postgres) AddReport(ctx context.Context, r *models.Report) error {
	if r.Source == "" {
		r.Source = models.SourceOfficial
	}
	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		return fail("add report", err)
	}
	return nil
}

func (s *Postgres) IncrementShares(ctx context.Context, reportID uint) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", reportID).
		UpdateColumn("shares", gorm.Expr("shares + ?", 1))
	if res.Error != nil {
		return fail("increment shares", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report %d: %w", reportID, ErrNotFound)
	}
	return nil
}

func (s *Postgres) PromoteTip(ctx context.Context, tip *models.Tip, year int) (*models.Report, error) {
	report := promotedReport(tip, year)
	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fail("promote tip", err)
	}
	return report, nil
}

// --- Users ---

func (s *Postgres) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, fail(fmt.Sprintf("user %d", userID), err)
	}
	return &u, nil
}

func (s *Postgres) TopUsers(ctx context.Context, limit int) ([]models.User, error) {
	return s.leaders(ctx, "points", limit)
}

func (s *Postgres) WeeklyLeaders(ctx context.Context, limit int) ([]models.User, error) {
	return s.leaders(ctx, "weekly_points", limit)
}

func (s *Postgres) leaders(ctx context.Context, column string, limit int) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true}).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fail("list leaders by "+column, err)
	}
	return users, nil
}

func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	if u.Rank == "" {
		u.Rank = models.DefaultRank
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return fail("create user "+u.Username, err)
	}
	return nil
}

func (s *Postgres) AddPoints(ctx context.Context, userID uint, points int64) error {
	err := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"points":        gorm.Expr("points + ?", points),
			"weekly_points": gorm.Expr("weekly_points + ?", points),
		}).Error
	if err != nil {
		return fail("add points", err)
	}
	return nil
}

func (s *Postgres) SwapRank(ctx context.Context, userID uint, from, to string) (bool, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND rank = ?", userID, from).
		UpdateColumn("rank", to)
	if res.Error != nil {
		return false, fail("update rank", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Postgres) IncrementTipCount(ctx context.Context, userID uint) error {
	err := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_tips", gorm.Expr("total_tips + ?", 1)).Error
	if err != nil {
		return fail("increment tip count", err)
	}
	return nil
}

func (s *Postgres) ResetWeeklyPoints(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("weekly_points <> ?", 0).
		UpdateColumn("weekly_points", 0)
	if res.Error != nil {
		return 0, fail("reset weekly points", res.Error)
	}
	return res.RowsAffected, nil
}

// --- Tips ---

func (s *Postgres) SubmitTip(ctx context.Context, tip *models.Tip) error {
	if err := s.DB.WithContext(ctx).Create(tip).Error; err != nil {
		return fail("submit tip", err)
	}
	return nil
}

func (s *Postgres) ListTips(ctx context.Context) ([]models.Tip, error) {
	var tips []models.Tip
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&tips).Error; err != nil {
		return nil, fail("list tips", err)
	}
	return tips, nil
}

func (s *Postgres) UpdateTipImpact(ctx context.Context, tipID uint, impactScore int) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Tip{}).
		Where("id = ?", tipID).
		UpdateColumn("impact_score", impactScore)
	if res.Error != nil {
		return fail("update tip impact", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tip %d: %w", tipID, ErrNotFound)
	}
	return nil
}

func (s *Postgres) VerifyTip(ctx context.Context, tipID uint) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Tip{}).
		Where("id = ?", tipID).
		UpdateColumn("verified", gorm.Expr("verified + ?", 1))
	if res.Error != nil {
		return fail("verify tip", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tip %d: %w", tipID, ErrNotFound)
	}
	return nil
}

// --- Achievements & badges ---

func (s *Postgres) ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	var out []models.Achievement
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fail("list achievements", err)
	}
	return out, nil
}

func (s *Postgres) AddAchievement(ctx context.Context, a *models.Achievement) (bool, error) {
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(a)
	if res.Error != nil {
		return false, fail("add achievement", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Postgres) ListBadges(ctx context.Context, userID uint) ([]models.Badge, error) {
	var out []models.Badge
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fail("list badges", err)
	}
	return out, nil
}

func (s *Postgres) AddBadge(ctx context.Context, b *models.Badge) (bool, error) {
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(b)
	if res.Error != nil {
		return false, fail("add badge", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// --- Aggregates ---

func (s *Postgres) TotalImpact(ctx context.Context) (int64, error) {
	var total int64
	err := s.DB.WithContext(ctx).
		Model(&models.Report{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fail("total impact", err)
	}
	return total, nil
}

func (s *Postgres) TipOfTheDay(ctx context.Context) (*models.Report, error) {
	var top []models.Report
	err := s.DB.WithContext(ctx).
		Order("shares DESC").Order("id ASC").
		Limit(1).
		Find(&top).Error
	if err != nil {
		return nil, fail("tip of the day", err)
	}
	if len(top) == 0 {
		return nil, nil
	}
	return &top[0], nil
}

func (s *Postgres) ActiveHunters(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.Tip{}).
		Where("verified > ? AND created_at >= ?", 0, since).
		Distinct("user_id").
		Count(&n).Error
	if err != nil {
		return 0, fail("active hunters", err)
	}
	return n, nil
}

func (s *Postgres) UserStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.DB.WithContext(ctx).
		Model(&models.Tip{}).
		Select(`COALESCE(SUM(amount), 0) AS total_impact,
			COALESCE(SUM(CASE WHEN verified > 0 THEN 1 ELSE 0 END), 0) AS verified_tips,
			COUNT(*) AS total_tips`).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, fail("user stats", err)
	}
	return &stats, nil
}

// --- Comments ---

func (s *Postgres) ListComments(ctx context.Context) ([]models.Comment, error) {
	var out []models.Comment
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fail("list comments", err)
	}
	return out, nil
}

func (s *Postgres) AddComment(ctx context.Context, c *models.Comment) error {
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return fail("add comment", err)
	}
	return nil
}
