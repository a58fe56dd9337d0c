// Package sched binds the background jobs of the worker to a scheduler.
package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/sweepbus"
	"github.com/jcpaschoal/lido/foundation/logger"
)

// Config contains all the mandatory systems required by the jobs.
type Config struct {
	Log   *logger.Logger
	Sweep *sweepbus.Core

	// PendingTTL is how long a reservation may stay PENDING before the
	// expire job cancels it.
	PendingTTL time.Duration

	CompleteEvery time.Duration
	ExpireEvery   time.Duration
}

// JobAdder defines behavior that sets the jobs to run for an instance
// of the worker.
type JobAdder interface {
	Add(s gocron.Scheduler, cfg Config) error
}

// New constructs a scheduler with every job of the adder registered. The
// scheduler is not started.
func New(cfg Config, jobAdder JobAdder) (gocron.Scheduler, error) {
	ctx := context.Background()

	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
					cfg.Log.Error(ctx, "job", "name", jobName, "jobID", jobID, "ERROR", err)
				}),
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					cfg.Log.Error(ctx, "job", "name", jobName, "jobID", jobID, "PANIC", recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	if err := jobAdder.Add(s, cfg); err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("add jobs: %w", err)
	}

	return s, nil
}

// Every registers fn to run every d under the specified name.
func Every(s gocron.Scheduler, name string, d time.Duration, fn func(ctx context.Context) error) error {
	task := func() error {
		return fn(context.Background())
	}

	if _, err := s.NewJob(gocron.DurationJob(d), gocron.NewTask(task), gocron.WithName(name)); err != nil {
		return fmt.Errorf("job[%s]: %w", name, err)
	}

	return nil
}
