package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	AwardKindAchievement = "achievement"
	AwardKindBadge       = "badge"
)

// Award is one achievement or badge as pushed on the award stream.
type Award struct {
	ID       uint                   `json:"id"`
	Kind     string                 `json:"kind"`
	Title    string                 `json:"title"`
	Type     models.AchievementType `json:"type,omitempty"`
	Icon     string                 `json:"icon,omitempty"`
	EarnedAt time.Time              `json:"earned_at"`
}

type AwardService struct {
	Store        store.Ledger
	Log          logrus.FieldLogger
	PollInterval time.Duration
}

func NewAwardService(ledger store.Ledger, log logrus.FieldLogger) *AwardService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AwardService{Store: ledger, Log: log, PollInterval: 2 * time.Second}
}

// AwardCursor holds the ids of the achievements and badges a stream has
// already delivered. A user has at most one row per catalog entry and per
// rank tier, so the sets stay small.
type AwardCursor struct {
	achievements map[uint]struct{}
	badges       map[uint]struct{}
}

func NewAwardCursor() *AwardCursor {
	return &AwardCursor{
		achievements: make(map[uint]struct{}),
		badges:       make(map[uint]struct{}),
	}
}

// AwardsSince returns the user's awards not yet recorded in cursor, oldest
// first, and records them. On error the cursor is left unchanged.
func (s *AwardService) AwardsSince(ctx context.Context, userID uint, cursor *AwardCursor) ([]Award, error) {
	achievements, err := s.Store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.Store.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awards []Award
	for _, a := range achievements {
		if _, seen := cursor.achievements[a.ID]; seen {
			continue
		}
		cursor.achievements[a.ID] = struct{}{}
		awards = append(awards, Award{ID: a.ID, Kind: AwardKindAchievement, Title: a.Title, Type: a.Type, EarnedAt: a.EarnedAt})
	}
	for _, b := range badges {
		if _, seen := cursor.badges[b.ID]; seen {
			continue
		}
		cursor.badges[b.ID] = struct{}{}
		awards = append(awards, Award{ID: b.ID, Kind: AwardKindBadge, Title: b.Name, Icon: b.Icon, EarnedAt: b.EarnedAt})
	}
	sort.SliceStable(awards, func(i, j int) bool { return awards[i].EarnedAt.Before(awards[j].EarnedAt) })
	return awards, nil
}

// StreamUserAwardsSSE pushes new achievements and badges for userID as
// server-sent events until the client goes away.
func (s *AwardService) StreamUserAwardsSSE(c *fiber.Ctx, userID uint) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	reqCtx := c.Context()
	log := s.Log.WithField("user_id", userID)

	reqCtx.SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(s.PollInterval)
		defer ticker.Stop()

		// Only awards earned after the stream opened are pushed.
		cursor := NewAwardCursor()
		_, err := s.AwardsSince(reqCtx, userID, cursor)
		primed := err == nil
		if err != nil {
			log.WithError(err).Warn("award stream init failed")
		}

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ticker.C:
				awards, err := s.AwardsSince(reqCtx, userID, cursor)
				if err != nil {
					log.WithError(err).Warn("award stream poll failed")
					continue
				}
				if !primed {
					// First successful read only marks existing awards as seen.
					primed, awards = true, nil
				}

				if len(awards) == 0 {
					w.WriteString(":\n\n")
				}
				for _, a := range awards {
					payload, _ := json.Marshal(a)
					fmt.Fprintf(w, "event: award\ndata: %s\n\n", payload)
				}

				if err := w.Flush(); err != nil {
					log.Debug("award stream client disconnected")
					return
				}

			case <-reqCtx.Done():
				return
			}
		}
	})

	return nil
}
