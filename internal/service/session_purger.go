package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"odyssey/internal/metrics"
	"odyssey/internal/ports"

	"github.com/robfig/cron/v3"
)

// PurgeSchedule : wall-clock time of the daily sweep
type PurgeSchedule struct {
	Hour, Minute, Second int
}

// Spec : cron expression with a seconds field, "0 0 6 * * *" for 06:00:00
func (s PurgeSchedule) Spec() string {
	return fmt.Sprintf("%d %d %d * * *", s.Second, s.Minute, s.Hour)
}

// SessionPurger : removes refresh records older than maxAge once a day
type SessionPurger struct {
	registry ports.SessionRegistry
	maxAge   time.Duration
	timeout  time.Duration
	spec     string
	metrics  *metrics.Metrics
}

func NewSessionPurger(registry ports.SessionRegistry, maxAge, timeout time.Duration, schedule PurgeSchedule, m *metrics.Metrics) *SessionPurger {
	return &SessionPurger{
		registry: registry,
		maxAge:   maxAge,
		timeout:  timeout,
		spec:     schedule.Spec(),
		metrics:  m,
	}
}

// Run : blocks until ctx is done, sweeping on the schedule. A running sweep
// is awaited before Run returns, a sweep still running at the next tick is skipped.
func (p *SessionPurger) Run(ctx context.Context) error {
	scheduler := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if _, err := scheduler.AddFunc(p.spec, func() { _, _ = p.PurgeOnce(ctx) }); err != nil {
		return fmt.Errorf("[SessionPurger] schedule %q: %w", p.spec, err)
	}

	scheduler.Start()
	slog.Info("refresh record purge scheduled", slog.String("cron", p.spec))

	<-ctx.Done()
	<-scheduler.Stop().Done()
	slog.Info("refresh record purge stopped")
	return nil
}

// PurgeOnce : a single sweep bounded by its own timeout
func (p *SessionPurger) PurgeOnce(ctx context.Context) (int64, error) {
	sweepCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	removed, err := p.registry.PurgeExpired(sweepCtx, p.maxAge)
	p.metrics.Purged(removed, err)
	if err != nil {
		slog.Error("refresh record purge failed", slog.Any("error", err))
		return removed, err
	}

	slog.Info("refresh records purged", slog.Int64("removed", removed), slog.String("max_age", p.maxAge.String()))
	return removed, nil
}
