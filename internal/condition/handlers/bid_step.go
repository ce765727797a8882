package handlers

import (
	"autobid/internal/condition"
	"autobid/internal/logger"

	"github.com/shopspring/decimal"
)

// bidStepHandler rounds the proposed amount up to the nearest multiple of a
// configured step, so bids land on clean price levels (e.g. whole euros).
type bidStepHandler struct{}

func (h *bidStepHandler) Name() string { return "bid_step" }

func (h *bidStepHandler) ShouldBid(condition.Context, any) bool { return true }

func (h *bidStepHandler) ModifyBidAmount(c condition.Context, value any, proposed decimal.Decimal) (decimal.Decimal, bool) {
	step, ok := number(value)
	if !ok || !step.IsPositive() {
		logger.Warnf("bid_step: invalid value %v on agent %s, amount left untouched", value, c.Agent.ID)
		return decimal.Zero, false
	}
	rounded := proposed.Div(step).Ceil().Mul(step)
	if rounded.Equal(proposed) {
		return decimal.Zero, false
	}
	return rounded, true
}
