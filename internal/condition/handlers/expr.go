package handlers

import (
	"sync"

	"autobid/internal/condition"
	"autobid/internal/logger"

	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"
)

// exprHandler evaluates a user-supplied CEL boolean over the snapshot facts.
// Programs are compiled once per distinct expression and cached; a cost limit
// keeps runaway expressions from stalling a cycle.
type exprHandler struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

func newExprHandler() (*exprHandler, error) {
	env, err := cel.NewEnv(
		cel.Variable("current_price", cel.DoubleType),
		cel.Variable("increment", cel.DoubleType),
		cel.Variable("max_bid", cel.DoubleType),
		cel.Variable("user_winning", cel.BoolType),
		cel.Variable("auction_id", cel.StringType),
		cel.Variable("user_id", cel.StringType),
	)
	if err != nil {
		return nil, err
	}
	return &exprHandler{env: env, programs: make(map[string]cel.Program)}, nil
}

func (h *exprHandler) Name() string { return "expr" }

func (h *exprHandler) ShouldBid(c condition.Context, value any) bool {
	expression, ok := stringValue(value)
	if !ok {
		logger.Warnf("expr: non-string value %v on agent %s, vetoing", value, c.Agent.ID)
		return false
	}
	prog, err := h.program(expression)
	if err != nil {
		logger.Warnf("expr: compile failed on agent %s: %v", c.Agent.ID, err)
		return false
	}
	increment := decimal.Zero
	if c.Agent.IncrementAmount != nil {
		increment = *c.Agent.IncrementAmount
	}
	maxBid := decimal.Zero
	if c.Agent.MaxBidAmount != nil {
		maxBid = *c.Agent.MaxBidAmount
	}
	out, _, err := prog.Eval(map[string]any{
		"current_price": floatOf(c.CurrentPrice),
		"increment":     floatOf(increment),
		"max_bid":       floatOf(maxBid),
		"user_winning":  c.UserIsWinning,
		"auction_id":    c.Agent.AuctionID,
		"user_id":       c.Agent.UserID,
	})
	if err != nil {
		logger.Warnf("expr: eval failed on agent %s: %v", c.Agent.ID, err)
		return false
	}
	result, ok := out.Value().(bool)
	if !ok {
		logger.Warnf("expr: expression on agent %s is not boolean, vetoing", c.Agent.ID)
		return false
	}
	return result
}

func (h *exprHandler) ModifyBidAmount(condition.Context, any, decimal.Decimal) (decimal.Decimal, bool) {
	return decimal.Zero, false
}

func (h *exprHandler) program(expression string) (cel.Program, error) {
	h.mu.RLock()
	prog, ok := h.programs[expression]
	h.mu.RUnlock()
	if ok {
		return prog, nil
	}
	ast, issues := h.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prog, err := h.env.Program(ast, cel.CostLimit(1_000_000))
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.programs[expression] = prog
	h.mu.Unlock()
	return prog, nil
}
