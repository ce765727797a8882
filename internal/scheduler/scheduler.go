package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"autobid/internal/decision"
	"autobid/internal/engine"
	"autobid/internal/logger"

	"github.com/google/uuid"
)

// CycleRunner is what the scheduler drives once per tick.
type CycleRunner interface {
	RunCycle(ctx context.Context) ([]engine.Outcome, error)
}

// CycleObserver receives each completed cycle's outcomes (for persistence,
// notifications, metrics). Observers run on the cycle goroutine.
type CycleObserver func(cycleID string, startedAt time.Time, outcomes []engine.Outcome)

// CycleScheduler fires a cycle at a fixed interval. Ticks never overlap: if a
// cycle is still running when the next tick arrives, the tick is dropped and
// logged, not queued. A failing cycle is logged and the loop keeps ticking.
type CycleScheduler struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool

	runner    CycleRunner
	observers []CycleObserver
	nowFn     func() time.Time
	running   atomic.Bool
	wg        sync.WaitGroup
}

func New(name string, interval time.Duration, runner CycleRunner) *CycleScheduler {
	return &CycleScheduler{
		Name:     name,
		Interval: interval,
		runner:   runner,
		nowFn:    time.Now,
	}
}

// OnCycle registers an observer. Not safe to call after Start.
func (s *CycleScheduler) OnCycle(fn CycleObserver) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

// Start blocks, firing cycles until ctx is cancelled. It waits for an
// in-flight cycle to finish before returning.
func (s *CycleScheduler) Start(ctx context.Context) {
	if s == nil || s.runner == nil {
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("scheduler %s: invalid interval=%s, exit", s.Name, s.Interval)
		return
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	startAt := s.nowFn().UTC()
	logger.Infof("scheduler %s: started interval=%s run_immediately=%v at=%s",
		s.Name, s.Interval, s.RunImmediately, startAt.Format(time.RFC3339))

	if s.RunImmediately {
		s.fire(ctx)
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infof("scheduler %s: ctx done, waiting for in-flight cycle", s.Name)
			s.wg.Wait()
			logger.Infof("scheduler %s: stopped (uptime=%s)", s.Name, s.nowFn().UTC().Sub(startAt).Truncate(time.Second))
			return
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

func (s *CycleScheduler) fire(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warnf("scheduler %s: previous cycle still running, tick dropped", s.Name)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("scheduler %s: cycle panic: %v", s.Name, r)
			}
		}()
		s.runCycle(ctx)
	}()
}

func (s *CycleScheduler) runCycle(ctx context.Context) {
	cycleID := uuid.NewString()
	startedAt := s.nowFn()

	outcomes, err := s.runner.RunCycle(ctx)
	if err != nil {
		// Systemic fault (store unreachable etc). Defer to the next tick.
		logger.Errorf("scheduler %s: cycle %s failed: %v", s.Name, cycleID, err)
		return
	}

	var placed, skipped, stopped, errored int
	for _, out := range outcomes {
		switch out.Kind() {
		case "placed":
			placed++
		case "stopped":
			stopped++
		case "error":
			errored++
		default:
			skipped++
		}
	}
	logger.Infof("scheduler %s: cycle %s agents=%d placed=%d skipped=%d stopped=%d errors=%d took=%s",
		s.Name, cycleID, len(outcomes), placed, skipped, stopped, errored,
		s.nowFn().Sub(startedAt).Truncate(time.Millisecond))
	for _, out := range outcomes {
		if out.BidPlaced && out.Decision.Kind == decision.KindPlaceBid {
			logger.Infof("scheduler %s: bid placed agent=%s auction=%s amount=%s reason=%q",
				s.Name, out.AgentID, out.AuctionID, out.Decision.Amount, out.Decision.Reason)
		}
		if out.Err != nil {
			logger.Warnf("scheduler %s: agent=%s auction=%s error: %v", s.Name, out.AgentID, out.AuctionID, out.Err)
		}
	}

	for _, fn := range s.observers {
		fn(cycleID, startedAt, outcomes)
	}
}
