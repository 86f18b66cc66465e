package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/navindex/internal/logfields"
)

// Scheduler wraps a gocron scheduler running the daemon's periodic jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler", logfields.Count(len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// Every schedules fn at a fixed interval. Runs of the same job never
// overlap; a tick arriving while the previous run is busy is skipped.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.execute, ctx, name, fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create %s job: %w", name, err)
	}
	s.logger.Debug("Scheduled job", logfields.Job(name), slog.Duration("interval", interval))
	return job.ID().String(), nil
}

func (s *Scheduler) execute(ctx context.Context, name string, fn func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := fn(ctx)
	ms := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		s.logger.Error("Scheduled job failed", logfields.Job(name), logfields.DurationMS(ms), logfields.Error(err))
		return
	}
	s.logger.Debug("Scheduled job finished", logfields.Job(name), logfields.DurationMS(ms))
}
