package scheduler

import (
	"context"
	"time"

	"bookworm/internal/ports"
)

// IntervalScheduler runs the job immediately and then on a fixed interval.
// Retry of failed runs is deliberately left to the next tick.
type IntervalScheduler struct {
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; a non-positive interval defaults
// to 24h.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &IntervalScheduler{interval: interval}
}

// Start begins ticking. Calling Start twice is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	stop := s.stop
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
