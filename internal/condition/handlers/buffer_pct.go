package handlers

import (
	"autobid/internal/condition"
	"autobid/internal/logger"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// bufferPctHandler adds a percentage buffer on top of the proposed amount to
// outpace other increment-only bidders. The processor's ceiling clamp still
// applies afterwards.
type bufferPctHandler struct{}

func (h *bufferPctHandler) Name() string { return "buffer_pct" }

func (h *bufferPctHandler) ShouldBid(condition.Context, any) bool { return true }

func (h *bufferPctHandler) ModifyBidAmount(c condition.Context, value any, proposed decimal.Decimal) (decimal.Decimal, bool) {
	pct, ok := number(value)
	if !ok || !pct.IsPositive() {
		logger.Warnf("buffer_pct: invalid value %v on agent %s, amount left untouched", value, c.Agent.ID)
		return decimal.Zero, false
	}
	factor := decimal.NewFromInt(1).Add(pct.Div(hundred))
	return proposed.Mul(factor), true
}
