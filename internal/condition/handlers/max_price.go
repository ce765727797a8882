package handlers

import (
	"autobid/internal/condition"
	"autobid/internal/logger"

	"github.com/shopspring/decimal"
)

// maxPriceHandler gates bidding while the auction price sits below a
// configured threshold. It never touches the amount; the hard ceiling is the
// agent's max_bid_amount, enforced by the processor.
type maxPriceHandler struct{}

func (h *maxPriceHandler) Name() string { return "max_price" }

func (h *maxPriceHandler) ShouldBid(c condition.Context, value any) bool {
	threshold, ok := number(value)
	if !ok || !threshold.IsPositive() {
		logger.Warnf("max_price: invalid value %v on agent %s, vetoing", value, c.Agent.ID)
		return false
	}
	return c.CurrentPrice.LessThan(threshold)
}

func (h *maxPriceHandler) ModifyBidAmount(condition.Context, any, decimal.Decimal) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
