package services

import (
	"context"
	"strings"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=32,alphanumunicode"`
}

type UserService struct {
	Store store.Ledger
	Log   logrus.FieldLogger
}

func NewUserService(ledger store.Ledger, log logrus.FieldLogger) *UserService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &UserService{Store: ledger, Log: log}
}

// Register creates a hunter at rank Rookie with no points. A taken username
// surfaces as store.ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	u := &models.User{Username: in.Username, Rank: models.DefaultRank}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("👤 User registered")
	return u, nil
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	return s.Store.GetUser(ctx, userID)
}

// Achievements lists a user's achievements newest first. Unknown users have
// none.
func (s *UserService) Achievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	out, err := s.Store.ListAchievements(ctx, userID)
	return nonNil(out), err
}

func (s *UserService) Badges(ctx context.Context, userID uint) ([]models.Badge, error) {
	out, err := s.Store.ListBadges(ctx, userID)
	return nonNil(out), err
}
