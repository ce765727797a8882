package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autobid/internal/condition"
	"autobid/internal/decision"
	"autobid/internal/logger"
	"autobid/internal/model"
	"autobid/internal/pkg/locks"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// AgentStore is the persistence surface the executor needs.
type AgentStore interface {
	LoadDue(ctx context.Context, now time.Time) ([]model.AgentConfig, error)
	Save(ctx context.Context, agent model.AgentConfig) error
}

// FactsProvider supplies the live auction snapshot facts.
type FactsProvider interface {
	AuctionFacts(ctx context.Context, auctionID string) (model.AuctionFacts, error)
}

// BidPlacer submits bids. It returns model.ErrStalePrice when the current
// price moved between snapshot and placement.
type BidPlacer interface {
	PlaceBid(ctx context.Context, auctionID, userID string, amount decimal.Decimal) error
}

// Options tunes executor behavior; zero values fall back to defaults.
type Options struct {
	// Workers bounds how many agents are evaluated in parallel per cycle.
	Workers int
	// PlacementTimeout bounds one placement call to the auction service.
	PlacementTimeout time.Duration
	// NowFn is the clock, injectable for tests.
	NowFn func() time.Time
}

const (
	defaultWorkers          = 4
	defaultPlacementTimeout = 5 * time.Second
)

// Executor turns pure decisions into effects. Per auction it holds an
// exclusive lock across build-snapshot, decide, and place, so two agents on
// the same auction (or two stacked cycles) never interleave a price read with
// another's price write.
type Executor struct {
	store    AgentStore
	facts    FactsProvider
	placer   BidPlacer
	handlers *condition.Registry

	auctionLocks     *locks.Keyed
	workers          int
	placementTimeout time.Duration
	nowFn            func() time.Time
}

func NewExecutor(store AgentStore, facts FactsProvider, placer BidPlacer, handlers *condition.Registry, opts Options) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.PlacementTimeout <= 0 {
		opts.PlacementTimeout = defaultPlacementTimeout
	}
	if opts.NowFn == nil {
		opts.NowFn = time.Now
	}
	return &Executor{
		store:            store,
		facts:            facts,
		placer:           placer,
		handlers:         handlers,
		auctionLocks:     locks.NewKeyed(),
		workers:          opts.Workers,
		placementTimeout: opts.PlacementTimeout,
		nowFn:            opts.NowFn,
	}
}

// RunCycle evaluates every due agent once. The returned slice preserves
// due-load order regardless of worker interleaving. The error return is
// systemic only (the store being unreachable); individual agent faults are
// captured in their outcome and never abort siblings.
func (e *Executor) RunCycle(ctx context.Context) ([]Outcome, error) {
	agents, err := e.store.LoadDue(ctx, e.nowFn())
	if err != nil {
		return nil, fmt.Errorf("load due agents: %w", err)
	}
	if len(agents) == 0 {
		return nil, nil
	}

	outcomes := make([]Outcome, len(agents))
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i, agent := range agents {
		g.Go(func() error {
			outcomes[i] = e.evaluate(ctx, agent)
			return nil
		})
	}
	g.Wait()
	return outcomes, nil
}

func (e *Executor) evaluate(ctx context.Context, agent model.AgentConfig) (out Outcome) {
	out = Outcome{AgentID: agent.ID, AuctionID: agent.AuctionID}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("agent %s: evaluation panic: %v", agent.ID, r)
			logger.Errorf("executor: %v", out.Err)
		}
	}()

	if err := agent.Validate(); err != nil {
		// Configuration fault: surfaced, agent left active for inspection.
		out.Err = err
		return out
	}

	unlock := e.auctionLocks.Lock(agent.AuctionID)
	defer unlock()

	d, placed, err := e.apply(ctx, &agent)
	out.Decision = d
	out.BidPlaced = placed
	out.Err = err

	now := e.nowFn()
	last := now
	agent.LastRunAt = &last
	if iv := agent.Interval(); iv > 0 {
		next := now.Add(iv)
		agent.NextRunAt = &next
	} else {
		agent.NextRunAt = nil
	}
	if saveErr := e.store.Save(ctx, agent); saveErr != nil {
		logger.Errorf("executor: save agent %s failed: %v", agent.ID, saveErr)
		if out.Err == nil {
			out.Err = saveErr
		}
	}
	return out
}

// apply runs one evaluate-then-act sequence under the auction lock. On a
// stale-price rejection it rebuilds the snapshot and retries the whole
// sequence exactly once; it never double-places.
func (e *Executor) apply(ctx context.Context, agent *model.AgentConfig) (decision.Decision, bool, error) {
	d, err := e.decideOnce(ctx, *agent)
	if err != nil {
		return decision.Decision{}, false, err
	}
	if d.Kind != decision.KindPlaceBid {
		e.applyStop(agent, d)
		return d, false, nil
	}

	err = e.place(ctx, *agent, d.Amount)
	if err == nil {
		return d, true, nil
	}
	if !errors.Is(err, model.ErrStalePrice) {
		return d, false, fmt.Errorf("place bid for agent %s: %w", agent.ID, err)
	}

	logger.Debugf("executor: stale price on auction %s, re-evaluating agent %s", agent.AuctionID, agent.ID)
	retry, err := e.decideOnce(ctx, *agent)
	if err != nil {
		return d, false, err
	}
	if retry.Kind != decision.KindPlaceBid {
		e.applyStop(agent, retry)
		return retry, false, nil
	}
	err = e.place(ctx, *agent, retry.Amount)
	if err == nil {
		return retry, true, nil
	}
	if errors.Is(err, model.ErrStalePrice) {
		return decision.Skip("Bid rejected: price moved during placement"), false, nil
	}
	return retry, false, fmt.Errorf("place bid for agent %s: %w", agent.ID, err)
}

func (e *Executor) decideOnce(ctx context.Context, agent model.AgentConfig) (decision.Decision, error) {
	facts, err := e.facts.AuctionFacts(ctx, agent.AuctionID)
	if err != nil {
		return decision.Decision{}, fmt.Errorf("auction facts for %s: %w", agent.AuctionID, err)
	}
	snapshot := condition.Context{
		Agent:         agent,
		Closed:        facts.Closed,
		CurrentPrice:  facts.CurrentPrice,
		UserIsWinning: facts.UserIsWinning(agent.UserID),
		Now:           e.nowFn(),
	}
	return decision.Decide(snapshot, e.handlers.Handlers()), nil
}

func (e *Executor) applyStop(agent *model.AgentConfig, d decision.Decision) {
	if d.Kind == decision.KindStopAutoBid {
		agent.IsActive = false
	}
}

func (e *Executor) place(ctx context.Context, agent model.AgentConfig, amount decimal.Decimal) error {
	pctx, cancel := context.WithTimeout(ctx, e.placementTimeout)
	defer cancel()
	return e.placer.PlaceBid(pctx, agent.AuctionID, agent.UserID, amount)
}
