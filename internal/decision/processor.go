package decision

import (
	"fmt"

	"autobid/internal/condition"
)

// Decide evaluates one snapshot against the handler chain and returns exactly
// one decision. It is pure: no I/O, no clock reads, no mutation of the
// snapshot, so re-running it on an identical snapshot yields an identical
// decision.
//
// Rules apply in order, first match wins:
//  1. closed auction        -> stop
//  2. inactive agent        -> skip
//  3. user already winning  -> skip
//  4. no conditions         -> skip
//  5. any handler veto      -> skip
//  6. current price + increment, threaded through the modifier chain
//  7. clamped to the ceiling after all modifiers
//  8. must strictly exceed the current price, otherwise skip
//
// When increment_amount is unset the proposed bid equals the current price
// and step 8 always skips. That mirrors the shipped behavior and is kept
// on purpose; see DESIGN.md.
func Decide(c condition.Context, handlers []condition.Handler) Decision {
	if c.Closed {
		return Stop("Auction has ended")
	}
	if !c.Agent.IsActive {
		return Skip("AutoBid is not active")
	}
	if c.UserIsWinning {
		return Skip("User is already the highest bidder")
	}
	if len(c.Agent.Conditions) == 0 {
		return Skip("No conditions configured")
	}

	for _, h := range handlers {
		value, configured := c.Agent.Conditions[h.Name()]
		if !configured {
			continue
		}
		if !h.ShouldBid(c, value) {
			return Skip(fmt.Sprintf("Condition '%s' not met", h.Name()))
		}
	}

	amount := c.CurrentPrice
	if c.Agent.IncrementAmount != nil {
		amount = amount.Add(*c.Agent.IncrementAmount)
	}
	for _, h := range handlers {
		value, configured := c.Agent.Conditions[h.Name()]
		if !configured {
			continue
		}
		if modified, ok := h.ModifyBidAmount(c, value, amount); ok {
			amount = modified
		}
	}

	reason := "All conditions met"
	if max := c.Agent.MaxBidAmount; max != nil && amount.GreaterThan(*max) {
		amount = *max
		reason = fmt.Sprintf("Bid capped at maximum bid amount (%s)", max)
	}

	if amount.LessThanOrEqual(c.CurrentPrice) {
		return Skip(fmt.Sprintf("Calculated bid (%s) is not higher than current price (%s)", amount, c.CurrentPrice))
	}
	return Place(amount, reason)
}
