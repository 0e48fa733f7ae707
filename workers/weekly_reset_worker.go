package workers

import (
	"context"
	"fmt"
	"time"

	"waste-hunt-api/metrics"
	"waste-hunt-api/store"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// WeeklyResetWorker zeroes every user's weekly points at the start of each
// week (Monday 00:00 UTC). Cumulative points and ranks are untouched.
type WeeklyResetWorker struct {
	ledger    store.Ledger
	log       logrus.FieldLogger
	timeout   time.Duration
	scheduler gocron.Scheduler
}

func NewWeeklyResetWorker(ledger store.Ledger, log logrus.FieldLogger) *WeeklyResetWorker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WeeklyResetWorker{
		ledger:  ledger,
		log:     log.WithField("worker", "weekly-reset"),
		timeout: 2 * time.Minute,
	}
}

// Start schedules the job. Call Stop to shut the scheduler down.
func (w *WeeklyResetWorker) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.WeeklyJob(1,
			gocron.NewWeekdays(time.Monday),
			gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0)),
		),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(ctx, w.timeout)
			defer cancel()
			if _, err := w.Reset(runCtx); err != nil {
				w.log.WithError(err).Error("weekly reset failed")
			}
		}),
		gocron.WithName("weekly-points-reset"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule weekly reset: %w", err)
	}

	sched.Start()
	w.scheduler = sched
	w.log.Info("🔁 Weekly leaderboard reset scheduled (Mondays 00:00 UTC)")
	return nil
}

// NextRun reports when the reset fires next.
func (w *WeeklyResetWorker) NextRun() (time.Time, error) {
	if w.scheduler == nil {
		return time.Time{}, fmt.Errorf("worker not started")
	}
	jobs := w.scheduler.Jobs()
	if len(jobs) == 0 {
		return time.Time{}, fmt.Errorf("no job scheduled")
	}
	return jobs[0].NextRun()
}

func (w *WeeklyResetWorker) Stop() error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Shutdown()
}

// Reset zeroes weekly points now and returns how many users changed.
func (w *WeeklyResetWorker) Reset(ctx context.Context) (int64, error) {
	n, err := w.ledger.ResetWeeklyPoints(ctx)
	if err != nil {
		return 0, err
	}
	metrics.RecordWeeklyReset(n)
	w.log.WithField("users", n).Info("✅ Weekly points reset")
	return n, nil
}
