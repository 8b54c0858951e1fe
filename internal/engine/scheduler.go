package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// Scheduler is the Clock & Scheduler component (C1): it fires the main
// tick (nominal 1000 ms) and the detection tick (nominal 50 ms) as two
// independent periodic workers, grounded on the teacher's ticker.go
// select-loop shape but running both cadences under errgroup.WithContext
// (rgonzalez12-dbd-analytics dependency) so shutdown is a single bounded
// join instead of a hand-rolled stopChan + sync.WaitGroup race.
//
// Each tick computes its work from timestamps, not a tick counter, so
// missed ticks are never replayed (§4.1).
type Scheduler struct {
	clock          *Clock
	mainInterval   time.Duration
	detectInterval time.Duration
	shutdownBound  time.Duration
	onMain         func(ctx context.Context, nowMs int64)
	onDetect       func(ctx context.Context, nowMs int64)
	logger         *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a Scheduler with the spec-default cadences
// (1 Hz main, 20 Hz detection) and a 5-second shutdown bound (§5).
func NewScheduler(clock *Clock, log *logger.Logger, onMain, onDetect func(context.Context, int64)) *Scheduler {
	return &Scheduler{
		clock:          clock,
		mainInterval:   1000 * time.Millisecond,
		detectInterval: 50 * time.Millisecond,
		shutdownBound:  5 * time.Second,
		onMain:         onMain,
		onDetect:       onDetect,
		logger:         log,
	}
}

// Run starts both tick workers in the background and returns immediately.
// No new work is scheduled after Shutdown begins (§4.1).
func (s *Scheduler) Run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			s.loop(gctx, s.mainInterval, s.onMain)
			return nil
		})
		g.Go(func() error {
			s.loop(gctx, s.detectInterval, s.onDetect)
			return nil
		})
		_ = g.Wait()
	}()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, fn func(context.Context, int64)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(ctx, s.clock.NowMs())
		}
	}
}

// Shutdown cancels both workers and waits up to the shutdown bound for
// them to drain; on timeout it logs and returns, relying on the ctx
// cancellation already propagated to abandon in-flight work (§5 "hard
// termination").
func (s *Scheduler) Shutdown() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	select {
	case <-s.done:
		s.logger.Info("scheduler stopped cleanly")
	case <-time.After(s.shutdownBound):
		s.logger.Warn("scheduler shutdown bound exceeded; hard terminating")
	}
}
