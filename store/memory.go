package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"waste-hunt-api/models"
)

// Memory is a process-local Ledger for local runs and tests. A single mutex
// makes every operation atomic, matching the single-statement guarantees of
// the Postgres store.
type Memory struct {
	mu    sync.Mutex
	clock func() time.Time

	users        []models.User
	reports      []models.Report
	tips         []models.Tip
	achievements []models.Achievement
	badges       []models.Badge
	comments     []models.Comment

	nextID map[string]uint
}

var _ Ledger = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		clock:  time.Now,
		nextID: make(map[string]uint),
	}
}

// SetClock replaces the time source used for created/earned timestamps.
func (m *Memory) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

func (m *Memory) id(table string) uint {
	m.nextID[table]++
	return m.nextID[table]
}

func (m *Memory) user(userID uint) *models.User {
	for i := range m.users {
		if m.users[i].ID == userID {
			return &m.users[i]
		}
	}
	return nil
}

func (m *Memory) tip(tipID uint) *models.Tip {
	for i := range m.tips {
		if m.tips[i].ID == tipID {
			return &m.tips[i]
		}
	}
	return nil
}

// --- Reports ---

func (m *Memory) ListReports(ctx context.Context) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Report(nil), m.reports...), nil
}

func (m *Memory) AddReport(ctx context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Source == "" {
		r.Source = models.SourceOfficial
	}
	r.ID = m.id("reports")
	m.reports = append(m.reports, *r)
	return nil
}

func (m *Memory) IncrementShares(ctx context.Context, reportID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == reportID {
			m.reports[i].Shares++
			return nil
		}
	}
	return fmt.Errorf("report %d: %w", reportID, ErrNotFound)
}

func (m *Memory) PromoteTip(ctx context.Context, tip *models.Tip, year int) (*models.Report, error) {
	report := promotedReport(tip, year)
	if err := m.AddReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// --- Users ---

func (m *Memory) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.user(userID)
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (m *Memory) TopUsers(ctx context.Context, limit int) ([]models.User, error) {
	return m.leaders(limit, func(u models.User) int64 { return u.Points }), nil
}

func (m *Memory) WeeklyLeaders(ctx context.Context, limit int) ([]models.User, error) {
	return m.leaders(limit, func(u models.User) int64 { return u.WeeklyPoints }), nil
}

func (m *Memory) leaders(limit int, score func(models.User) int64) []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.User(nil), m.users...)
	sort.SliceStable(out, func(i, j int) bool { return score(out[i]) > score(out[j]) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return fmt.Errorf("create user %s: %w", u.Username, ErrConflict)
		}
	}
	if u.Rank == "" {
		u.Rank = models.DefaultRank
	}
	u.ID = m.id("users")
	m.users = append(m.users, *u)
	return nil
}

func (m *Memory) AddPoints(ctx context.Context, userID uint, points int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.user(userID); u != nil {
		u.Points += points
		u.WeeklyPoints += points
	}
	return nil
}

func (m *Memory) SwapRank(ctx context.Context, userID uint, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.user(userID)
	if u == nil || u.Rank != from {
		return false, nil
	}
	u.Rank = to
	return true, nil
}

func (m *Memory) IncrementTipCount(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.user(userID); u != nil {
		u.TotalTips++
	}
	return nil
}

func (m *Memory) ResetWeeklyPoints(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.users {
		if m.users[i].WeeklyPoints != 0 {
			m.users[i].WeeklyPoints = 0
			n++
		}
	}
	return n, nil
}

// --- Tips ---

func (m *Memory) SubmitTip(ctx context.Context, tip *models.Tip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tip.ID = m.id("tips")
	if tip.CreatedAt.IsZero() {
		tip.CreatedAt = m.clock()
	}
	m.tips = append(m.tips, *tip)
	return nil
}

func (m *Memory) ListTips(ctx context.Context) ([]models.Tip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Tip(nil), m.tips...), nil
}

func (m *Memory) UpdateTipImpact(ctx context.Context, tipID uint, impactScore int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tip(tipID)
	if t == nil {
		return fmt.Errorf("tip %d: %w", tipID, ErrNotFound)
	}
	t.ImpactScore = impactScore
	return nil
}

func (m *Memory) VerifyTip(ctx context.Context, tipID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tip(tipID)
	if t == nil {
		return fmt.Errorf("tip %d: %w", tipID, ErrNotFound)
	}
	t.Verified++
	return nil
}

// --- Achievements & badges ---

func (m *Memory) ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Achievement
	for i := len(m.achievements) - 1; i >= 0; i-- {
		if m.achievements[i].UserID == userID {
			out = append(out, m.achievements[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out, nil
}

func (m *Memory) AddAchievement(ctx context.Context, a *models.Achievement) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.achievements {
		if existing.UserID == a.UserID && existing.Type == a.Type {
			return false, nil
		}
	}
	a.ID = m.id("achievements")
	if a.EarnedAt.IsZero() {
		a.EarnedAt = m.clock()
	}
	m.achievements = append(m.achievements, *a)
	return true, nil
}

func (m *Memory) ListBadges(ctx context.Context, userID uint) ([]models.Badge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Badge
	for i := len(m.badges) - 1; i >= 0; i-- {
		if m.badges[i].UserID == userID {
			out = append(out, m.badges[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out, nil
}

func (m *Memory) AddBadge(ctx context.Context, b *models.Badge) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.badges {
		if existing.UserID == b.UserID && existing.Name == b.Name {
			return false, nil
		}
	}
	b.ID = m.id("badges")
	if b.EarnedAt.IsZero() {
		b.EarnedAt = m.clock()
	}
	m.badges = append(m.badges, *b)
	return true, nil
}

// --- Aggregates ---

func (m *Memory) TotalImpact(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, r := range m.reports {
		total += r.Amount
	}
	return total, nil
}

func (m *Memory) TipOfTheDay(ctx context.Context) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return nil, nil
	}
	best := m.reports[0]
	for _, r := range m.reports[1:] {
		if r.Shares > best.Shares {
			best = r
		}
	}
	return &best, nil
}

func (m *Memory) ActiveHunters(ctx context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uint]struct{})
	for _, t := range m.tips {
		if t.Verified > 0 && !t.CreatedAt.Before(since) {
			seen[t.UserID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (m *Memory) UserStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats models.UserStats
	for _, t := range m.tips {
		if t.UserID != userID {
			continue
		}
		stats.TotalTips++
		stats.TotalImpact += t.Amount
		if t.Verified > 0 {
			stats.VerifiedTips++
		}
	}
	return &stats, nil
}

// --- Comments ---

func (m *Memory) ListComments(ctx context.Context) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Comment, 0, len(m.comments))
	for i := len(m.comments) - 1; i >= 0; i-- {
		out = append(out, m.comments[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) AddComment(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id("comments")
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.clock()
	}
	m.comments = append(m.comments, *c)
	return nil
}
