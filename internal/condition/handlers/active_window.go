package handlers

import (
	"autobid/internal/condition"
	"autobid/internal/logger"

	"github.com/shopspring/decimal"
)

// activeWindowHandler permits bidding only inside a daily UTC time window,
// configured as {"start": "HH:MM", "end": "HH:MM"}. A window whose end is
// before its start wraps past midnight.
type activeWindowHandler struct{}

func (h *activeWindowHandler) Name() string { return "active_window" }

func (h *activeWindowHandler) ShouldBid(c condition.Context, value any) bool {
	m, ok := mapValue(value)
	if !ok {
		logger.Warnf("active_window: invalid value %v on agent %s, vetoing", value, c.Agent.ID)
		return false
	}
	startRaw, _ := stringValue(m["start"])
	endRaw, _ := stringValue(m["end"])
	start, okStart := parseClock(startRaw)
	end, okEnd := parseClock(endRaw)
	if !okStart || !okEnd {
		logger.Warnf("active_window: invalid window %q-%q on agent %s, vetoing", startRaw, endRaw, c.Agent.ID)
		return false
	}
	now := c.Now.UTC()
	minute := now.Hour()*60 + now.Minute()
	if start == end {
		return true
	}
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

func (h *activeWindowHandler) ModifyBidAmount(condition.Context, any, decimal.Decimal) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
