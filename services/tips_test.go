package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvidence struct {
	keys []string
	err  error
}

func (f *fakeEvidence) Save(ctx context.Context, file *multipart.FileHeader, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.test/" + key, nil
}

func amountOf(n int64) *int64 {
	return &n
}

func newTipService(t *testing.T, evidence EvidenceStore) (*TipService, *store.Memory, *models.User) {
	t.Helper()
	ledger := store.NewMemory()
	u := &models.User{Username: "WasteHunter"}
	require.NoError(t, ledger.CreateUser(context.Background(), u))

	log := quietLogger()
	svc := NewTipService(ledger, NewGamificationService(ledger, log), evidence, log)
	svc.Now = func() time.Time { return time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC) }
	return svc, ledger, u
}

func TestSubmitTipPromotesAndRewards(t *testing.T) {
	ctx := context.Background()
	svc, ledger, u := newTipService(t, nil)

	res, err := svc.Submit(ctx, u.ID, SubmitTipInput{
		Title:       "  $15M on Ghost Town Wi-Fi ",
		Description: "Internet for abandoned towns",
		Amount:      amountOf(15_000_000),
		Location:    "Nevada",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "$15M on Ghost Town Wi-Fi", res.Tip.Title)
	assert.Equal(t, u.ID, res.Tip.UserID)
	assert.Equal(t, models.SourceUserSubmitted, res.Report.Source)
	assert.Equal(t, 2025, res.Report.Year)
	assert.Equal(t, res.Tip.Amount, res.Report.Amount)
	assert.Equal(t, int64(80), res.Rewards.PointsAwarded)

	reports, err := ledger.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	tips, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tips, 1)
}

func TestSubmitTipValidation(t *testing.T) {
	svc, ledger, u := newTipService(t, nil)

	_, err := svc.Submit(context.Background(), u.ID, SubmitTipInput{Title: "", Description: "d", Location: "l", Amount: amountOf(0)}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title is required")

	_, err = svc.Submit(context.Background(), u.ID, SubmitTipInput{Title: "t", Description: "d", Location: "l", Amount: amountOf(-1)}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit(context.Background(), u.ID, SubmitTipInput{Title: "t", Description: "d", Location: "l"}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "amount is required")

	achievements, err := ledger.ListAchievements(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, achievements)

	tips, err := ledger.ListTips(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tips)
}

func TestSubmitTipUnknownUser(t *testing.T) {
	svc, _, _ := newTipService(t, nil)

	_, err := svc.Submit(context.Background(), 999, SubmitTipInput{Title: "t", Description: "d", Location: "l", Amount: amountOf(0)}, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitTipWithEvidence(t *testing.T) {
	evidence := &fakeEvidence{}
	svc, _, u := newTipService(t, evidence)

	res, err := svc.Submit(context.Background(), u.ID,
		SubmitTipInput{Title: "t", Description: "d", Location: "l", Amount: amountOf(10)},
		&multipart.FileHeader{Filename: "Receipt.PDF", Size: 1024})
	require.NoError(t, err)

	require.Len(t, evidence.keys, 1)
	assert.True(t, strings.HasPrefix(evidence.keys[0], "evidence/"))
	assert.True(t, strings.HasSuffix(evidence.keys[0], ".pdf"))
	require.NotNil(t, res.Tip.Evidence)
	assert.Equal(t, "https://cdn.example.test/"+evidence.keys[0], *res.Tip.Evidence)
	assert.Equal(t, res.Tip.Evidence, res.Report.Evidence)
}

func TestSubmitTipEvidenceRejected(t *testing.T) {
	ctx := context.Background()
	in := SubmitTipInput{Title: "t", Description: "d", Location: "l", Amount: amountOf(0)}

	svc, _, u := newTipService(t, nil)
	_, err := svc.Submit(ctx, u.ID, in, &multipart.FileHeader{Filename: "a.png", Size: 1})
	assert.ErrorIs(t, err, ErrValidation)

	svc, _, u = newTipService(t, &fakeEvidence{})
	_, err = svc.Submit(ctx, u.ID, in, &multipart.FileHeader{Filename: "a.png", Size: MaxEvidenceSize + 1})
	assert.ErrorIs(t, err, ErrValidation)

	boom := errors.New("bucket unavailable")
	svc, ledger, u := newTipService(t, &fakeEvidence{err: boom})
	_, err = svc.Submit(ctx, u.ID, in, &multipart.FileHeader{Filename: "a.png", Size: 1})
	assert.ErrorIs(t, err, boom)
	tips, err := ledger.ListTips(ctx)
	require.NoError(t, err)
	assert.Empty(t, tips)
}

func TestVerifyAndImpact(t *testing.T) {
	ctx := context.Background()
	svc, ledger, u := newTipService(t, nil)

	res, err := svc.Submit(ctx, u.ID, SubmitTipInput{Title: "t", Description: "d", Location: "l", Amount: amountOf(0)}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, res.Tip.ID))
	require.NoError(t, svc.SetImpact(ctx, res.Tip.ID, ImpactInput{ImpactScore: 42}))
	assert.ErrorIs(t, svc.SetImpact(ctx, res.Tip.ID, ImpactInput{ImpactScore: 101}), ErrValidation)
	assert.ErrorIs(t, svc.Verify(ctx, 999), store.ErrNotFound)

	tips, err := ledger.ListTips(ctx)
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, 1, tips[0].Verified)
	assert.Equal(t, 42, tips[0].ImpactScore)
}

func TestSubmitTipReturnsPartialRewards(t *testing.T) {
	ctx := context.Background()
	ledger := store.NewMemory()
	u := &models.User{Username: "WasteHunter"}
	require.NoError(t, ledger.CreateUser(ctx, u))

	log := quietLogger()
	flaky := &flakyLedger{Ledger: ledger, failOn: "AddPoints"}
	svc := NewTipService(ledger, NewGamificationService(flaky, log), nil, log)

	res, err := svc.Submit(ctx, u.ID, SubmitTipInput{Title: "t", Description: "d", Location: "l", Amount: amountOf(2_000_000)}, nil)
	assert.ErrorIs(t, err, store.ErrFailure)
	require.NotNil(t, res)
	assert.NotZero(t, res.Tip.ID)
	assert.NotZero(t, res.Report.ID)
	require.NotNil(t, res.Rewards)
	assert.Len(t, res.Rewards.Achievements, 2)
	assert.Zero(t, res.Rewards.PointsAwarded)
}
