package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "waste_hunt",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waste_hunt",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "waste_hunt",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	tipsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "waste_hunt",
			Subsystem: "gamification",
			Name:      "tips_processed_total",
			Help:      "Tip submissions run through the gamification engine.",
		},
	)

	pointsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "waste_hunt",
			Subsystem: "gamification",
			Name:      "points_awarded_total",
			Help:      "Points added to users by tip submissions.",
		},
	)

	achievementsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waste_hunt",
			Subsystem: "gamification",
			Name:      "achievements_granted_total",
			Help:      "Achievements granted, by type.",
		},
		[]string{"type"},
	)

	badgesGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waste_hunt",
			Subsystem: "gamification",
			Name:      "badges_granted_total",
			Help:      "Rank badges granted, by rank.",
		},
		[]string{"rank"},
	)

	duplicateGrants = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waste_hunt",
			Subsystem: "gamification",
			Name:      "duplicate_grants_suppressed_total",
			Help:      "Grants skipped because the user already held them.",
		},
		[]string{"kind"},
	)

	weeklyResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "waste_hunt",
			Subsystem: "workers",
			Name:      "weekly_reset_users_total",
			Help:      "Users whose weekly points were reset.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		tipsSubmitted,
		pointsAwarded,
		achievementsGranted,
		badgesGranted,
		duplicateGrants,
		weeklyResets,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency per route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		path := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// RecordTip counts one processed tip and the points it earned.
func RecordTip(points int64) {
	tipsSubmitted.Inc()
	pointsAwarded.Add(float64(points))
}

func RecordAchievement(achievementType string) {
	achievementsGranted.WithLabelValues(achievementType).Inc()
}

func RecordBadge(rank string) {
	badgesGranted.WithLabelValues(rank).Inc()
}

// RecordDuplicateGrant counts an insert-if-absent that found an existing row.
func RecordDuplicateGrant(kind string) {
	duplicateGrants.WithLabelValues(kind).Inc()
}

func RecordWeeklyReset(users int64) {
	weeklyResets.Add(float64(users))
}
