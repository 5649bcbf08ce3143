package usecase

import (
	"context"
	"log/slog"
	"time"

	"bookworm/internal/ports"
)

// Scheduler wires the interval driver with the pipeline and reporter.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	reporter *Reporter
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs. reporter may
// be nil when no SMTP sender is configured.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, reporter *Reporter, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, reporter: reporter, logger: logger}
}

// Start registers the recurring job: a full pipeline pass over all tracked
// authors followed by the tracking report. Report failures never fail the
// run.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.pipeline.RunAll(ctx); err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
		if s.reporter == nil {
			return
		}
		if err := s.reporter.SendDaily(ctx); err != nil {
			s.logger.Error("report delivery failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
