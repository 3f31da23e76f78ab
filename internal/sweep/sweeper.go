// Package sweep runs the periodic deadline sweep that closes active jobs
// whose application deadline has passed.
package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type JobCloser interface {
	CloseExpired(ctx context.Context) (int, error)
}

// Locker elects a single sweep leader across instances.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Sweeper struct {
	jobs     JobCloser
	lock     Locker
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(jobs JobCloser, lock Locker, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{jobs: jobs, lock: lock, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass if this instance wins the leader lock.
func (s *Sweeper) Sweep(ctx context.Context) {
	sugar := s.logger.Sugar()

	ok, err := s.lock.Acquire(ctx)
	if err != nil {
		sugar.Warnw("sweep lock acquire failed", "err", err)
		return
	}
	if !ok {
		return
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			sugar.Warnw("sweep lock release failed", "err", err)
		}
	}()

	closed, err := s.jobs.CloseExpired(ctx)
	if err != nil {
		sugar.Errorw("deadline sweep failed", "err", err)
		return
	}
	if closed > 0 {
		sugar.Infow("deadline sweep closed jobs", "count", closed)
	}
}
