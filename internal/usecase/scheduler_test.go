package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookworm/internal/domain"
)

// stubDriver invokes the job synchronously so the wiring can be asserted
// without timers.
type stubDriver struct {
	started bool
	stopped bool
}

func (d *stubDriver) Start(_ context.Context, job func(time.Time)) error {
	d.started = true
	job(time.Now())
	return nil
}

func (d *stubDriver) Stop(_ context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerReportFailureDoesNotFailRun(t *testing.T) {
	source := &fakeSource{raw: map[string]domain.RawAuthor{rawAuthorURL: validRawAuthor()}}
	store := &fakeStore{
		urls:    []string{rawAuthorURL},
		authors: []domain.Author{{ID: 1, Name: "Suzanne Collins"}},
		measurements: map[int64][]domain.AuthorMeasurement{
			1: {measurement(100, 4.5, 10, 200, 2)},
		},
	}
	sender := &fakeSender{err: errors.New("smtp unreachable")}
	driver := &stubDriver{}

	pipeline := newTestPipeline(source, store)
	reporter := NewReporter(store, sender, testLogger())
	sched := NewScheduler(driver, pipeline, reporter, testLogger())

	require.NoError(t, sched.Start(context.Background()))

	require.True(t, driver.started)
	require.Len(t, store.loads, 1, "pipeline run must complete despite the report failure")

	require.NoError(t, sched.Stop(context.Background()))
	require.True(t, driver.stopped)
}

func TestSchedulerWithoutReporter(t *testing.T) {
	source := &fakeSource{raw: map[string]domain.RawAuthor{rawAuthorURL: validRawAuthor()}}
	store := &fakeStore{urls: []string{rawAuthorURL}}
	driver := &stubDriver{}

	sched := NewScheduler(driver, newTestPipeline(source, store), nil, testLogger())

	require.NoError(t, sched.Start(context.Background()))
	require.Len(t, store.loads, 1)
}
