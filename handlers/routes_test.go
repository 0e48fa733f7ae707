package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"waste-hunt-api/middleware"
	"waste-hunt-api/models"
	"waste-hunt-api/seed"
	"waste-hunt-api/services"
	"waste-hunt-api/store"
	"waste-hunt-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "admin-token"

type testEnv struct {
	app    *fiber.App
	ledger *store.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	ledger := store.NewMemory()
	data, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, seed.Run(context.Background(), ledger, data, log))

	evidence, err := utils.NewLocalEvidence(t.TempDir(), "/uploads")
	require.NoError(t, err)

	engine := services.NewGamificationService(ledger, log)
	tips := services.NewTipService(ledger, engine, evidence, log)
	noLimit := func(c *fiber.Ctx) error { return c.Next() }

	app := fiber.New()
	app.Use(middleware.UserContextMiddleware(1, log))
	SetupFeedRoutes(app, services.NewFeedService(ledger, log), noLimit)
	SetupTipRoutes(app, tips, noLimit)
	SetupLeaderboardRoutes(app, services.NewLeaderboardService(ledger))
	SetupProgressionRoutes(app, services.NewUserService(ledger, log), services.NewAwardService(ledger, log), noLimit)
	SetupAdminRoutes(app, tips, middleware.AdminAuthMiddleware(adminToken, log))
	SetupSystemRoutes(app)

	return &testEnv{app: app, ledger: ledger}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) get(t *testing.T, path string) (int, []byte) {
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) sendJSON(t *testing.T, method, path string, body interface{}, headers ...string) (int, []byte) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return e.do(t, req)
}

func decode(t *testing.T, raw []byte, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func TestShareReportTwice(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		status, raw := env.do(t, httptest.NewRequest(http.MethodPost, "/api/waste/3/share", nil))
		require.Equal(t, fiber.StatusOK, status, string(raw))
	}

	status, raw := env.get(t, "/api/waste")
	require.Equal(t, fiber.StatusOK, status)
	var reports []models.Report
	decode(t, raw, &reports)
	require.Len(t, reports, 14)
	assert.Equal(t, int64(2), reports[2].Shares)

	status, _ = env.do(t, httptest.NewRequest(http.MethodPost, "/api/waste/999/share", nil))
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = env.do(t, httptest.NewRequest(http.MethodPost, "/api/waste/abc/share", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCommentLengthLimit(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.sendJSON(t, http.MethodPost, "/api/comments", fiber.Map{"content": strings.Repeat("x", 300)})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, raw = env.sendJSON(t, http.MethodPost, "/api/comments", fiber.Map{"content": strings.Repeat("x", 301)})
	assert.Equal(t, fiber.StatusBadRequest, status)
	var body map[string]string
	decode(t, raw, &body)
	assert.Equal(t, "failed to add comment", body["error"])
	assert.Contains(t, body["cause"], "content")

	status, raw = env.get(t, "/api/comments")
	require.Equal(t, fiber.StatusOK, status)
	var comments []models.Comment
	decode(t, raw, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, uint(1), comments[0].UserID)
}

func TestSubmitTipJSON(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.sendJSON(t, http.MethodPost, "/api/tips", fiber.Map{
		"title":       "$15M on Ghost Town Wi-Fi",
		"description": "Internet for abandoned mining towns",
		"amount":      15_000_000,
		"location":    "Nevada",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	var res services.TipSubmission
	decode(t, raw, &res)
	assert.Equal(t, int64(80), res.Rewards.PointsAwarded)
	assert.Len(t, res.Rewards.Achievements, 2)
	assert.Equal(t, models.SourceUserSubmitted, res.Report.Source)

	status, raw = env.get(t, "/api/users/1/achievements")
	require.Equal(t, fiber.StatusOK, status)
	var achievements []models.Achievement
	decode(t, raw, &achievements)
	assert.Len(t, achievements, 2)

	status, raw = env.get(t, "/api/users/1")
	require.Equal(t, fiber.StatusOK, status)
	var user models.User
	decode(t, raw, &user)
	assert.Equal(t, int64(80), user.Points)
	assert.Equal(t, int64(1), user.TotalTips)

	status, raw = env.get(t, "/api/tips")
	require.Equal(t, fiber.StatusOK, status)
	var tips []models.Tip
	decode(t, raw, &tips)
	assert.Len(t, tips, 1)
}

func TestSubmitTipMultipartWithEvidence(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"title":       "Gold-plated staplers",
		"description": "Procurement receipt attached",
		"amount":      "2500000",
		"location":    "Washington DC",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("evidence", "receipt.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tips", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-User-ID", "1")
	status, raw := env.do(t, req)
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	var res services.TipSubmission
	decode(t, raw, &res)
	require.NotNil(t, res.Tip.Evidence)
	assert.True(t, strings.HasPrefix(*res.Tip.Evidence, "/uploads/evidence/"))
	assert.True(t, strings.HasSuffix(*res.Tip.Evidence, ".jpg"))
	assert.Equal(t, int64(30), res.Rewards.PointsAwarded)
}

func TestSubmitTipErrors(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.sendJSON(t, http.MethodPost, "/api/tips", fiber.Map{"title": "", "amount": 5})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.sendJSON(t, http.MethodPost, "/api/tips",
		fiber.Map{"title": "t", "description": "d", "location": "l", "amount": 5},
		"X-User-ID", "404")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw := env.sendJSON(t, http.MethodPost, "/api/tips",
		fiber.Map{"title": "t", "description": "d", "location": "l"})
	assert.Equal(t, fiber.StatusBadRequest, status, string(raw))
	assert.Contains(t, string(raw), "amount is required")

	tips, err := env.ledger.ListTips(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tips)
	user, err := env.ledger.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, user.Points)
	assert.Zero(t, user.TotalTips)
}

func TestLeaderboards(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"} {
		status, raw := env.sendJSON(t, http.MethodPost, "/api/users", fiber.Map{"username": name})
		require.Equal(t, fiber.StatusCreated, status, string(raw))
	}

	status, raw := env.get(t, "/api/leaderboard")
	require.Equal(t, fiber.StatusOK, status)
	var users []models.User
	decode(t, raw, &users)
	assert.Len(t, users, 5)

	status, raw = env.get(t, "/api/leaderboard/weekly?limit=2")
	require.Equal(t, fiber.StatusOK, status)
	decode(t, raw, &users)
	assert.Len(t, users, 2)

	status, raw = env.get(t, "/api/leaderboard/detailed")
	require.Equal(t, fiber.StatusOK, status)
	var detailed []map[string]interface{}
	decode(t, raw, &detailed)
	require.Len(t, detailed, 7)
	for _, key := range []string{"username", "achievements", "badges", "verification_rate", "total_impact", "tip_count"} {
		assert.Contains(t, detailed[0], key)
	}
}

func TestRegisterUserErrors(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.sendJSON(t, http.MethodPost, "/api/users", fiber.Map{"username": "WasteHunter"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = env.sendJSON(t, http.MethodPost, "/api/users", fiber.Map{"username": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.get(t, "/api/users/999")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestStatsAndAdminVerify(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.get(t, "/api/stats")
	require.Equal(t, fiber.StatusOK, status)
	var stats services.Stats
	decode(t, raw, &stats)
	assert.Equal(t, int64(1_752_000_000), stats.TotalImpact)
	assert.NotNil(t, stats.TipOfTheDay)
	assert.Zero(t, stats.ActiveHunters)

	status, raw = env.sendJSON(t, http.MethodPost, "/api/tips", fiber.Map{
		"title": "t", "description": "d", "location": "l", "amount": 1,
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, _ = env.do(t, httptest.NewRequest(http.MethodPost, "/api/admin/tips/1/verify", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/tips/1/verify", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	status, _ = env.do(t, req)
	assert.Equal(t, fiber.StatusOK, status)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/tips/77/verify", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	status, _ = env.do(t, req)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = env.sendJSON(t, http.MethodPatch, "/api/admin/tips/1/impact",
		fiber.Map{"impact_score": 55}, "Authorization", "Bearer "+adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	status, raw = env.get(t, "/api/stats")
	require.Equal(t, fiber.StatusOK, status)
	decode(t, raw, &stats)
	assert.Equal(t, int64(1), stats.ActiveHunters)
	assert.Equal(t, int64(1_752_000_001), stats.TotalImpact)
}

func TestCatalogRanksAndSystem(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.get(t, "/api/achievements/catalog")
	require.Equal(t, fiber.StatusOK, status)
	var catalog []models.AchievementDefinition
	decode(t, raw, &catalog)
	assert.Len(t, catalog, 4)

	status, raw = env.get(t, "/api/ranks")
	require.Equal(t, fiber.StatusOK, status)
	var ranks []services.RankTier
	decode(t, raw, &ranks)
	require.Len(t, ranks, 5)
	assert.Equal(t, "Waste Legend", ranks[4].Title)

	status, _ = env.get(t, "/healthz")
	assert.Equal(t, fiber.StatusOK, status)

	status, raw = env.get(t, "/metrics")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), "go_goroutines")
}
