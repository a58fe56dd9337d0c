// Package all binds every background job of the worker.
package all

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jcpaschoal/lido/app/sdk/sched"
)

// Set of job names.
const (
	CompleteFinished = "complete-finished"
	ExpirePending    = "expire-pending"
)

// Jobs constructs the add value which provides the implementation of
// JobAdder for specifying what jobs to run in this instance.
func Jobs() add {
	return add{}
}

type add struct{}

// Add implements the JobAdder interface.
func (add) Add(s gocron.Scheduler, cfg sched.Config) error {
	complete := func(ctx context.Context) error {
		_, err := cfg.Sweep.CompleteFinished(ctx, time.Now())
		return err
	}

	if err := sched.Every(s, CompleteFinished, cfg.CompleteEvery, complete); err != nil {
		return err
	}

	expire := func(ctx context.Context) error {
		_, err := cfg.Sweep.ExpirePending(ctx, time.Now().Add(-cfg.PendingTTL))
		return err
	}

	return sched.Every(s, ExpirePending, cfg.ExpireEvery, expire)
}
