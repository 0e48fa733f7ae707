package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsOnEmptyStore(t *testing.T) {
	feed := NewFeedService(store.NewMemory(), quietLogger())

	stats, err := feed.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalImpact)
	assert.Nil(t, stats.TipOfTheDay)
	assert.Zero(t, stats.ActiveHunters)
}

func TestStatsAggregates(t *testing.T) {
	ctx := context.Background()
	ledger := store.NewMemory()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ledger.SetClock(func() time.Time { return now.Add(-time.Hour) })

	feed := NewFeedService(ledger, quietLogger())
	feed.Now = func() time.Time { return now }

	trash := &models.Report{Title: "Trash Cans", Amount: 20_000_000}
	monkeys := &models.Report{Title: "Monkey Research", Amount: 482_000_000}
	require.NoError(t, ledger.AddReport(ctx, trash))
	require.NoError(t, ledger.AddReport(ctx, monkeys))
	require.NoError(t, feed.Share(ctx, monkeys.ID))

	tip := &models.Tip{UserID: 7, Title: "t", Amount: 1}
	require.NoError(t, ledger.SubmitTip(ctx, tip))
	require.NoError(t, ledger.VerifyTip(ctx, tip.ID))

	stats, err := feed.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(502_000_000), stats.TotalImpact)
	require.NotNil(t, stats.TipOfTheDay)
	assert.Equal(t, monkeys.ID, stats.TipOfTheDay.ID)
	assert.Equal(t, int64(1), stats.ActiveHunters)
}

func TestShareUnknownReport(t *testing.T) {
	feed := NewFeedService(store.NewMemory(), quietLogger())
	assert.ErrorIs(t, feed.Share(context.Background(), 12), store.ErrNotFound)
}

func TestAddCommentLength(t *testing.T) {
	ctx := context.Background()
	feed := NewFeedService(store.NewMemory(), quietLogger())

	c, err := feed.AddComment(ctx, 1, CommentInput{Content: strings.Repeat("a", models.MaxCommentLength)})
	require.NoError(t, err)
	assert.Len(t, c.Content, models.MaxCommentLength)
	assert.NotZero(t, c.ID)

	_, err = feed.AddComment(ctx, 1, CommentInput{Content: strings.Repeat("a", models.MaxCommentLength+1)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), fmt.Sprintf("at most %d characters", models.MaxCommentLength))

	_, err = feed.AddComment(ctx, 1, CommentInput{Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddCommentCountsComposedCharacters(t *testing.T) {
	ctx := context.Background()
	feed := NewFeedService(store.NewMemory(), quietLogger())

	// "e" plus a combining acute accent composes to one character.
	decomposed := strings.Repeat("e\u0301", models.MaxCommentLength)
	c, err := feed.AddComment(ctx, 1, CommentInput{Content: decomposed})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("\u00e9", models.MaxCommentLength), c.Content)

	comments, err := feed.ListComments(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}
