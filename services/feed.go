package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// ActiveHunterWindow is how far back a verified tip still makes its author
// an active hunter.
const ActiveHunterWindow = 7 * 24 * time.Hour

type Stats struct {
	TotalImpact   int64          `json:"total_impact"`
	TipOfTheDay   *models.Report `json:"tip_of_the_day"`
	ActiveHunters int64          `json:"active_hunters"`
}

// CommentInput is checked after NFC normalisation, so the length limit
// (models.MaxCommentLength) counts composed characters.
type CommentInput struct {
	Content string `json:"content" form:"content" validate:"required"`
}

type FeedService struct {
	Store store.Ledger
	Log   logrus.FieldLogger
	Now   func() time.Time
}

func NewFeedService(ledger store.Ledger, log logrus.FieldLogger) *FeedService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FeedService{Store: ledger, Log: log, Now: time.Now}
}

func (s *FeedService) ListReports(ctx context.Context) ([]models.Report, error) {
	return s.Store.ListReports(ctx)
}

// Share bumps a report's share counter by one.
func (s *FeedService) Share(ctx context.Context, reportID uint) error {
	return s.Store.IncrementShares(ctx, reportID)
}

// Stats reads the three dashboard aggregates concurrently.
func (s *FeedService) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	since := s.Now().Add(-ActiveHunterWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.Store.TotalImpact(gctx)
		stats.TotalImpact = total
		return err
	})
	g.Go(func() error {
		top, err := s.Store.TipOfTheDay(gctx)
		stats.TipOfTheDay = top
		return err
	})
	g.Go(func() error {
		n, err := s.Store.ActiveHunters(gctx, since)
		stats.ActiveHunters = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *FeedService) ListComments(ctx context.Context) ([]models.Comment, error) {
	return s.Store.ListComments(ctx)
}

func (s *FeedService) AddComment(ctx context.Context, userID uint, in CommentInput) (*models.Comment, error) {
	in.Content = norm.NFC.String(strings.TrimSpace(in.Content))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.Content) > models.MaxCommentLength {
		return nil, fmt.Errorf("%w: content must be at most %d characters", ErrValidation, models.MaxCommentLength)
	}
	c := &models.Comment{UserID: userID, Content: in.Content}
	if err := s.Store.AddComment(ctx, c); err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{"comment_id": c.ID, "user_id": userID}).Debug("💬 Comment added")
	return c, nil
}
