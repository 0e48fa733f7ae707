package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"waste-hunt-api/config"
	"waste-hunt-api/handlers"
	"waste-hunt-api/metrics"
	"waste-hunt-api/middleware"
	"waste-hunt-api/seed"
	"waste-hunt-api/services"
	"waste-hunt-api/store"
	"waste-hunt-api/utils"
	"waste-hunt-api/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("invalid configuration: ", err)
	}
	log, err := cfg.Logger()
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		// Evidence uploads plus form fields.
		BodyLimit: services.MaxEvidenceSize + 5*1024*1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: !containsWildcard(cfg.AllowedOrigins),
		MaxAge:           86400,
	}))
	app.Use(metrics.Middleware())
	app.Use(middleware.UserContextMiddleware(cfg.DefaultUserID, log))

	var ledger store.Ledger
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		ledger = pg
		log.Info("🗄️  Using Postgres ledger")
	default:
		ledger = store.NewMemory()
		log.Warn("⚠️  DATABASE_URL not set, using in-memory ledger (data is lost on restart)")
	}

	if cfg.Seed {
		data, err := seed.Default()
		if err != nil {
			log.Fatal(err)
		}
		if err := seed.Run(ctx, ledger, data, log); err != nil {
			log.Fatal("failed to seed data: ", err)
		}
	}

	var evidence services.EvidenceStore
	if cfg.Evidence.R2Enabled() {
		r2, err := utils.NewR2Evidence(ctx, cfg.Evidence)
		if err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		evidence = r2
		log.WithField("bucket", cfg.Evidence.Bucket).Info("☁️  Evidence uploads go to R2")
	} else {
		local, err := utils.NewLocalEvidence(cfg.Evidence.LocalDir, "/uploads")
		if err != nil {
			log.Fatal(err)
		}
		evidence = local
		app.Use("/uploads", filesystem.New(filesystem.Config{
			Root:   http.Dir(cfg.Evidence.LocalDir),
			MaxAge: 3600,
		}))
		log.WithField("dir", cfg.Evidence.LocalDir).Info("📁 Evidence uploads stored locally")
	}

	engine := services.NewGamificationService(ledger, log)
	feedService := services.NewFeedService(ledger, log)
	tipService := services.NewTipService(ledger, engine, evidence, log)
	leaderboardService := services.NewLeaderboardService(ledger)
	userService := services.NewUserService(ledger, log)
	awardService := services.NewAwardService(ledger, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, log).Handler()
	adminAuth := middleware.AdminAuthMiddleware(cfg.AdminToken, log)

	handlers.SetupSystemRoutes(app)
	handlers.SetupFeedRoutes(app, feedService, limiter)
	handlers.SetupTipRoutes(app, tipService, limiter)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupProgressionRoutes(app, userService, awardService, limiter)
	handlers.SetupAdminRoutes(app, tipService, adminAuth)

	var resetWorker *workers.WeeklyResetWorker
	if cfg.WeeklyReset {
		resetWorker = workers.NewWeeklyResetWorker(ledger, log)
		if err := resetWorker.Start(ctx); err != nil {
			log.Fatal(err)
		}
		if next, err := resetWorker.NextRun(); err == nil {
			log.WithField("next_run", next).Info("✅ Weekly reset worker running")
		}
	}
	if cfg.AdminToken == "" {
		log.Warn("⚠️  ADMIN_TOKEN not set, moderation endpoints are disabled")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("Server error: %v", err)
			stop()
		}
	}()

	log.Infof("✅ Server running on http://localhost:%s", cfg.Port)
	log.Infof("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if resetWorker != nil {
		if err := resetWorker.Stop(); err != nil {
			log.WithError(err).Error("weekly reset worker shutdown")
		}
	}
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
