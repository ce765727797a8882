package engine

import "autobid/internal/decision"

// Outcome is the per-agent record of one evaluation cycle. The scheduler
// aggregates these for the cycle summary; they are not engine state.
type Outcome struct {
	AgentID   string
	AuctionID string
	Decision  decision.Decision
	BidPlaced bool
	Err       error
}

// Kind collapses the outcome into one of placed/skipped/stopped/error for
// tallying and persistence.
func (o Outcome) Kind() string {
	if o.Err != nil {
		return "error"
	}
	switch o.Decision.Kind {
	case decision.KindPlaceBid:
		return "placed"
	case decision.KindStopAutoBid:
		return "stopped"
	default:
		return "skipped"
	}
}
